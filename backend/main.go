package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"

	"lms/backend/config"
	"lms/backend/identity"
	"lms/backend/middleware"
	"lms/backend/payments"
	"lms/backend/routes"
	"lms/backend/storage"
	"lms/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", "error", err)
	}

	ctx := context.Background()
	rdb := connectRedis(ctx, cfg, logger)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage init failed", "driver", cfg.StorageDriver, "error", err)
	}
	defer closeStore()

	var gateway payments.Gateway = payments.Disabled{}
	if cfg.StripeSecretKey != "" {
		gateway = payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		logger.Warn("STRIPE_SECRET_KEY is not set, purchases are disabled")
	}

	if cfg.SeedDemo {
		if err := seedDemo(ctx, db, logger); err != nil {
			logger.Error("demo seed failed", "error", err)
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler(logger),
		BodyLimit:    cfg.MaxUploadBytes,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, routes.Dependencies{
		DB:        db,
		Cfg:       cfg,
		Log:       logger,
		Redis:     rdb,
		Store:     store,
		Gateway:   gateway,
		Directory: identity.NewAdminClient(cfg.IdentityAPIURL, cfg.IdentitySecretKey, cfg.OutboundTimeout),
	})

	go func() {
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Fatal("server stopped", "error", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort, "storage", cfg.StorageDriver)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	if rdb != nil {
		rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server stopped")
}

// connectRedis returns nil when redis is not configured or unreachable; the API
// then runs without cache and rate limits.
func connectRedis(ctx context.Context, cfg *config.Config, logger *utils.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, running without cache", "addr", cfg.RedisAddr, "error", err)
		rdb.Close()
		return nil
	}
	return rdb
}

func openStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.Store, func(), error) {
	if cfg.StorageDriver == "gcs" {
		gcs, err := storage.NewGCSStore(ctx, cfg.GCSBucket, cfg.CDNDomain, logger)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { gcs.Close() }, nil
	}
	local, err := storage.NewLocalStore(cfg.MediaDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, nil, err
	}
	return local, func() {}, nil
}
