package errors

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation is the kind for bad or duplicate input.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is the kind for missing, invalid or expired credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is the kind for authenticated callers lacking role or ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is the kind for missing entities.
	ErrNotFound = errors.New("not found")
	// ErrTooManyRequests is the kind for throttled callers.
	ErrTooManyRequests = errors.New("too many requests")
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = NotFound("user not found", "USER_NOT_FOUND")
	// ErrArticleNotFound is returned when an article is not found or not visible to the caller.
	ErrArticleNotFound = NotFound("article not found", "ARTICLE_NOT_FOUND")
	// ErrCommentNotFound is returned when a comment is not found.
	ErrCommentNotFound = NotFound("comment not found", "COMMENT_NOT_FOUND")
	// ErrParentCommentNotFound is returned when a reply targets a missing comment or one of another article.
	ErrParentCommentNotFound = NotFound("parent comment not found", "PARENT_COMMENT_NOT_FOUND")
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = NotFound("category not found", "CATEGORY_NOT_FOUND")
	// ErrMediaNotFound is returned when a media record is not found.
	ErrMediaNotFound = NotFound("media not found", "MEDIA_NOT_FOUND")

	// ErrAuthRequired is returned when an operation needs an authenticated caller.
	ErrAuthRequired = Unauthorized("authentication required", "AUTH_REQUIRED")
	// ErrAccessDenied is returned when the caller's role or ownership does not allow the operation.
	ErrAccessDenied = Forbidden("access denied", "ACCESS_DENIED")
)

// Error is a domain error carrying a kind, a caller-facing message and a stable code.
type Error struct {
	Kind    error
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind so callers can use errors.Is(err, ErrNotFound).
func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates a domain error of the given kind.
func New(kind error, message, code string) *Error {
	return &Error{Kind: kind, Message: message, Code: code}
}

// Validation creates an ErrValidation domain error.
func Validation(message, code string) *Error {
	return New(ErrValidation, message, code)
}

// Unauthorized creates an ErrUnauthorized domain error.
func Unauthorized(message, code string) *Error {
	return New(ErrUnauthorized, message, code)
}

// Forbidden creates an ErrForbidden domain error.
func Forbidden(message, code string) *Error {
	return New(ErrForbidden, message, code)
}

// NotFound creates an ErrNotFound domain error.
func NotFound(message, code string) *Error {
	return New(ErrNotFound, message, code)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a
// domain error becomes a generic 500.
func MapErrorToHTTP(err error) *HTTPError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return NewHTTPError(http.StatusBadRequest, verrs.Error(), "VALIDATION_FAILED")
	}

	var de *Error
	if !errors.As(err, &de) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}

	switch de.Kind {
	case ErrValidation:
		return NewHTTPError(http.StatusBadRequest, de.Message, de.Code)
	case ErrUnauthorized:
		return NewHTTPError(http.StatusUnauthorized, de.Message, de.Code)
	case ErrForbidden:
		return NewHTTPError(http.StatusForbidden, de.Message, de.Code)
	case ErrNotFound:
		return NewHTTPError(http.StatusNotFound, de.Message, de.Code)
	case ErrTooManyRequests:
		return NewHTTPError(http.StatusTooManyRequests, de.Message, de.Code)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
