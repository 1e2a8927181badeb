package middleware

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"newsportal/internal/auth"
	apperr "newsportal/internal/errors"
)

const identityKey = "identity"

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(tokens *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(tokens, false))
}

// OptionalAuth attaches the caller's identity when a valid bearer token is
// present and lets the request through anonymously otherwise.
func OptionalAuth(tokens *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(tokens, true))
}

func jwtConfig(tokens *auth.JWTService, optional bool) echojwt.Config {
	return echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  identityKey,
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return tokens.Verify(token)
		},
		ContinueOnIgnoredError: optional,
		ErrorHandler: func(_ echo.Context, err error) error {
			if optional {
				return nil
			}
			return unauthorized(err)
		},
	}
}

func unauthorized(err error) error {
	resp := apperr.ErrorResponse{Message: "authentication required", Code: "AUTH_REQUIRED"}
	switch {
	case errors.Is(err, auth.ErrExpired):
		resp = apperr.ErrorResponse{Message: "token expired", Code: "TOKEN_EXPIRED"}
	case errors.Is(err, auth.ErrInvalidSignature):
		resp = apperr.ErrorResponse{Message: "invalid token", Code: "INVALID_TOKEN"}
	}
	return echo.NewHTTPError(http.StatusUnauthorized, resp)
}

// Identity returns the authenticated caller, or nil for anonymous requests.
func Identity(c echo.Context) *auth.Identity {
	id, _ := c.Get(identityKey).(*auth.Identity)
	return id
}
