package router

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"newsportal/internal/auth"
	"newsportal/internal/config"
	"newsportal/internal/errors"
	"newsportal/internal/handler"
	"newsportal/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth     *handler.AuthHandler
	Article  *handler.ArticleHandler
	Comment  *handler.CommentHandler
	Category *handler.CategoryHandler
	Media    *handler.MediaHandler
}

// Register wires routes and middleware. When serveUploads is set, files in
// cfg.UploadDir are served under cfg.UploadURLPrefix.
func Register(e *echo.Echo, cfg *config.Config, logger *slog.Logger, tokens *auth.JWTService, h Handlers, serveUploads bool) {
	e.HTTPErrorHandler = errorHandler(e)
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit(bodyLimit(cfg.UploadMaxSize)))
	if cfg.RateLimit > 0 {
		e.Use(echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
			Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
			DenyHandler: func(c echo.Context, _ string, _ error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
					Message: "too many requests",
					Code:    "RATE_LIMITED",
				})
			},
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if serveUploads {
		e.Static(cfg.UploadURLPrefix, cfg.UploadDir)
	}

	requireAuth := middleware.RequireAuth(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)

	api := e.Group("/api")

	// Auth routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/me", h.Auth.Me, requireAuth)
	api.PUT("/auth/profile", h.Auth.UpdateProfile, requireAuth)
	api.PUT("/auth/change-password", h.Auth.ChangePassword, requireAuth)
	api.POST("/auth/avatar", h.Auth.UpdateAvatar, requireAuth)

	// Article routes
	api.GET("/articles", h.Article.List, optionalAuth)
	api.GET("/articles/:slug", h.Article.Get, optionalAuth)
	api.POST("/articles", h.Article.Create, requireAuth)
	api.PUT("/articles/:id", h.Article.Update, requireAuth)
	api.DELETE("/articles/:id", h.Article.Delete, requireAuth)

	// Comment routes
	api.GET("/articles/:id/comments", h.Comment.List, optionalAuth)
	api.POST("/articles/:id/comments", h.Comment.Create, requireAuth)
	api.PUT("/comments/:id/moderate", h.Comment.Moderate, requireAuth)
	api.DELETE("/comments/:id", h.Comment.Delete, requireAuth)

	// Category routes
	api.GET("/categories", h.Category.List)
	api.GET("/categories/:slug", h.Category.Get)
	api.POST("/categories", h.Category.Create, requireAuth)
	api.PUT("/categories/:id", h.Category.Update, requireAuth)
	api.DELETE("/categories/:id", h.Category.Delete, requireAuth)

	// Media routes
	api.POST("/media/upload", h.Media.Upload, requireAuth)
	api.GET("/media", h.Media.List, requireAuth)
	api.DELETE("/media/:id", h.Media.Delete, requireAuth)
}

// bodyLimit leaves room for multipart framing around the largest upload.
func bodyLimit(maxUpload int64) string {
	if maxUpload <= 0 {
		return "12M"
	}
	return strconv.FormatInt(maxUpload/1024+1024, 10) + "K"
}

// errorHandler renders every error as {message, code}.
func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := errors.ErrorResponse{Message: "internal server error", Code: "INTERNAL_ERROR"}

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			switch m := he.Message.(type) {
			case errors.ErrorResponse:
				body = m
			case string:
				body = errors.ErrorResponse{Message: m, Code: codeForStatus(status)}
			default:
				body = errors.ErrorResponse{Message: http.StatusText(status), Code: codeForStatus(status)}
			}
		} else {
			slog.Error("unhandled error", "path", c.Path(), "error", err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			e.Logger.Error(writeErr)
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "AUTH_REQUIRED"
	case http.StatusForbidden:
		return "ACCESS_DENIED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "FILE_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
