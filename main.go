package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devtree/devtree/backend/api/handlers"
	"github.com/devtree/devtree/backend/api/internal/app"
	"github.com/devtree/devtree/backend/api/internal/config"
	"github.com/devtree/devtree/backend/api/internal/database"
	"github.com/devtree/devtree/backend/api/internal/storage"
	"github.com/devtree/devtree/backend/api/internal/tokens"
	"github.com/devtree/devtree/backend/api/pkg/logger"
	"github.com/devtree/devtree/backend/api/pkg/metrics"
	"github.com/devtree/devtree/backend/api/pkg/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.SetEnvironment(cfg.Server.Environment)
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connectMongo(ctx, cfg.MongoDB)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("failed to ensure indexes: %v", err)
	}

	checks := map[string]func(context.Context) error{
		"mongo": func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}

	// Redis backs the token blacklist and the distributed rate limiter; both
	// degrade to no-ops or in-memory when it is missing.
	var rc *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rc = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			logger.Infof("connected to Redis: %s", addr)
		}
		defer func() { _ = rc.Close() }()
		checks["redis"] = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
	}

	var icons storage.IconStore
	if minioStore, err := storage.NewMinIOStorage(ctx, cfg.MinIO); err == nil {
		icons = minioStore
	} else if !errors.Is(err, storage.ErrNotConfigured) {
		logger.Warnf("badge icons disabled: %v", err)
	}

	svc := app.NewServices(app.MongoRepos(db), icons)
	if err := svc.Badges.EnsureCatalog(ctx); err != nil {
		logger.Fatalf("failed to seed badge catalog: %v", err)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := handlers.NewRouter(cfg, svc, handlers.RouterOptions{
		Redis:     rc,
		Blacklist: tokens.NewBlacklist(rc),
		Checks:    checks,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Servidor corriendo en el puerto %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// connectMongo retries with exponential backoff to tolerate startup races.
func connectMongo(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := database.ConnectMongo(ctx, cfg.URI, cfg.Timeout)
		if err == nil {
			logger.Infof("connected to MongoDB (%s)", cfg.Database)
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}
