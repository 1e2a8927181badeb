package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"newsportal/internal/errors"
	"newsportal/internal/service"
)

// MessageResponse is returned by endpoints that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// fail converts a service error into an echo HTTP error. Unexpected errors
// are logged and hidden behind a generic message.
func fail(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err,
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Message: message,
		Code:    code,
	})
}

func invalidBody() error {
	return badRequest("invalid request body", "INVALID_REQUEST")
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(req); err != nil {
		return fail(c, err)
	}
	return nil
}

// pathID parses a UUID path parameter.
func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, badRequest("invalid "+name, "INVALID_ID")
	}
	return id, nil
}

func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

// page renders a listing as {items, page, limit, totalPages, total<Entity>}.
func page[T any](res *service.PageResult[T], totalKey string) map[string]interface{} {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return map[string]interface{}{
		"items":      items,
		"page":       res.Page,
		"limit":      res.Limit,
		"totalPages": res.TotalPages(),
		totalKey:     res.Total,
	}
}

// fileUpload reads a multipart file field into a service.Upload. The
// returned close function must be called once the upload is consumed.
func fileUpload(c echo.Context, field string) (service.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return service.Upload{}, nil, badRequest("no file uploaded", "FILE_MISSING")
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, nil, fail(c, err)
	}
	up := service.Upload{Filename: fh.Filename, Size: fh.Size, Content: f}
	return up, func() { _ = f.Close() }, nil
}
