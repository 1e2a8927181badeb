package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "newsportal/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"newsportal/internal/access"
	"newsportal/internal/auth"
	"newsportal/internal/cache"
	"newsportal/internal/config"
	"newsportal/internal/db"
	"newsportal/internal/handler"
	"newsportal/internal/logging"
	"newsportal/internal/repository"
	"newsportal/internal/router"
	"newsportal/internal/service"
	"newsportal/internal/storage"
)

// @title News Portal API
// @version 1.0
// @description News portal backend with articles, categories, threaded comments, media uploads and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		fatal("database init", err)
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		db.Reset(gormDB)
	}

	if err := db.Migrate(gormDB); err != nil {
		fatal("migrate", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, running without cache", "addr", cfg.RedisAddr, "error", err)
	}
	cancelPing()

	acl := access.MustNew()

	// Storage backend
	var store storage.Storage
	serveUploads := false
	if cfg.UseS3() {
		store = storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		logger.Info("using object storage", "bucket", cfg.S3Bucket)
	} else {
		local, err := storage.NewLocal(cfg.UploadDir, cfg.UploadURLPrefix)
		if err != nil {
			fatal("upload dir", err)
		}
		store = local
		serveUploads = true
		logger.Info("using local storage", "dir", cfg.UploadDir)
	}
	uploader := service.NewUploader(store, cfg.UploadMaxSize)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	articleRepo := repository.NewArticleRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)
	mediaRepo := repository.NewMediaRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	attemptStore := auth.NewAttemptStore(cacheClient, cfg.LoginMaxAttempts, cfg.LoginLockout)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, attemptStore, uploader)
	articleService := service.NewArticleService(articleRepo, categoryRepo, acl)
	commentService := service.NewCommentService(commentRepo, articleRepo, acl)
	categoryService := service.NewCategoryService(categoryRepo, cacheClient, acl)
	mediaService := service.NewMediaService(mediaRepo, uploader, acl)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, logger, jwtService, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Article:  handler.NewArticleHandler(articleService),
		Comment:  handler.NewCommentHandler(commentService),
		Category: handler.NewCategoryHandler(categoryService),
		Media:    handler.NewMediaHandler(mediaService),
	}, serveUploads)

	logger.Info("swagger documentation available", "url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort))

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server start", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// swaggerURL accepts a host with or without scheme.
func swaggerURL(host, port string) string {
	if host == "" {
		host = "localhost:" + port
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
