package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wisdomairey/real-estate-listings-app/config"
	"github.com/wisdomairey/real-estate-listings-app/handlers"
	"github.com/wisdomairey/real-estate-listings-app/logger"
	"github.com/wisdomairey/real-estate-listings-app/middleware"
	"github.com/wisdomairey/real-estate-listings-app/repository"
	"github.com/wisdomairey/real-estate-listings-app/routes"
	"github.com/wisdomairey/real-estate-listings-app/services"
	"github.com/wisdomairey/real-estate-listings-app/storage"
	"github.com/wisdomairey/real-estate-listings-app/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Environment)
	ctx := context.Background()

	mongoClient, db, err := config.ConnectDB(ctx, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongodb")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = utils.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without cache and token denylist")
			redisClient = nil
		}
	}
	cache := utils.NewCache(redisClient, cfg.Redis.CacheTTL)

	properties := repository.NewPropertyRepository(db)
	users := repository.NewUserRepository(db)
	if err := properties.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("ensure property indexes failed")
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("ensure user indexes failed")
	}

	images, uploadDir := newImageStore(ctx, cfg, log)

	signer := utils.NewTokenSigner(cfg.JWT.Secret, cfg.JWT.Expiry)
	authService := services.NewAuthService(users, signer, cache, services.AuthOptions{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockDuration:     cfg.Auth.LockDuration,
	}, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	checks := map[string]handlers.Pinger{
		"mongodb": handlers.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }),
	}
	if cache.Enabled() {
		checks["redis"] = cache
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(log)
	e.Server.ReadTimeout = cfg.HTTP.ReadTimeout
	e.Server.WriteTimeout = cfg.HTTP.WriteTimeout

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(metrics.Middleware())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(echomw.BodyLimit(cfg.HTTP.BodyLimit))

	routes.RegisterRoutes(e, routes.Controllers{
		Properties: handlers.NewPropertyController(properties, properties, images, cache, handlers.PropertyControllerConfig{
			MaxFiles:    cfg.Upload.MaxFiles,
			MaxFileSize: cfg.Upload.MaxFileSize,
		}, log),
		Auth:   handlers.NewAuthController(authService, log),
		Health: handlers.NewHealthController(checks),
	}, routes.Options{
		Authenticator: authService,
		UploadDir:     uploadDir,
		Gatherer:      registry,
	})

	go func() {
		log.Info().Str("addr", cfg.HTTP.Address()).Msg("server starting")
		if err := e.Start(cfg.HTTP.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(log, e, cfg.HTTP.ShutdownTimeout, mongoClient, redisClient)
}

// newImageStore returns the configured store and, for local disk, the
// directory to serve under /uploads.
func newImageStore(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (storage.ImageStore, string) {
	if cfg.Upload.Backend == "s3" {
		store, err := storage.NewS3Store(cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Warn().Err(err).Msg("ensure bucket failed")
		}
		return store, ""
	}

	store, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.URLPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init upload dir")
	}
	return store, store.Dir()
}

func waitForShutdown(log zerolog.Logger, e *echo.Echo, timeout time.Duration, mongoClient *mongo.Client, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if err := e.Close(); err != nil {
			log.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect error")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	}

	log.Info().Msg("server exited cleanly")
}
