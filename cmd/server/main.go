// Package main runs the event management HTTP server with WebSocket notifications and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventhub/backend/config"
	"github.com/eventhub/backend/internal/auth"
	"github.com/eventhub/backend/internal/catalog"
	"github.com/eventhub/backend/internal/memstore"
	"github.com/eventhub/backend/internal/notify"
	"github.com/eventhub/backend/internal/profiles"
	"github.com/eventhub/backend/internal/realtime"
	"github.com/eventhub/backend/internal/server"
	"github.com/eventhub/backend/pkg/database"
	"github.com/eventhub/backend/pkg/queue"
	"github.com/eventhub/backend/pkg/redis"
	"github.com/eventhub/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var stores server.Stores
	switch cfg.Server.Store {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		stores = server.MemoryStores(memstore.New())
	default:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if cfg.Database.MigrateOnStart {
			if err := database.Migrate(ctx, pool, logger); err != nil {
				logger.Fatal("migrate", zap.Error(err))
			}
		}
		stores = server.PostgresStores(pool)
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		if cfg.Server.Store != "memory" {
			logger.Fatal("redis", zap.Error(err))
		}
		logger.Warn("redis unavailable; emails disabled and pushes stay on this instance", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var images catalog.ImageStore
	if cfg.AWS.Region != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			Bucket:               cfg.AWS.VenueImagesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			images = s3Client
		}
	}

	var (
		hub        *realtime.Hub
		emailQueue notify.EmailQueue
	)
	if rdb != nil {
		redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
		defer redisPubSub.Close()
		hub = realtime.NewHub(logger, redisPubSub, redisPubSub)
		emailQueue = queue.NewQueue(rdb.Client, logger)
	} else {
		hub = realtime.NewHub(logger, nil, nil)
	}
	dispatcher := notify.NewDispatcher(emailQueue, hub, cfg.Notifications.DispatchTimeout, logger)

	if cfg.Bootstrap.CoordinatorID != "" {
		id, err := uuid.Parse(cfg.Bootstrap.CoordinatorID)
		if err != nil {
			logger.Fatal("BOOTSTRAP_COORDINATOR_ID", zap.Error(err))
		}
		svc := profiles.NewService(stores.Profiles, stores.Catalog, dispatcher, logger)
		if err := svc.EnsureCoordinator(ctx, id, cfg.Bootstrap.CoordinatorEmail, cfg.Bootstrap.CoordinatorName); err != nil {
			logger.Fatal("bootstrap coordinator", zap.Error(err))
		}
	}

	router := server.NewRouter(server.Deps{
		Stores:      stores,
		Verifier:    auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Audience, cfg.Auth.Issuer),
		Notifier:    dispatcher,
		Emails:      emailQueue,
		Images:      images,
		Hub:         hub,
		CORSOrigins: cfg.Server.Origins(),
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Server.Store))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	dispatcher.Wait()
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
