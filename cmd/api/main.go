package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cicli-volante/internal/config"
	"cicli-volante/internal/database"
	"cicli-volante/internal/logger"
	"cicli-volante/internal/notify"
	"cicli-volante/internal/repository"
	"cicli-volante/internal/seed"
	"cicli-volante/internal/server"
	"cicli-volante/internal/service"
	"cicli-volante/migrations"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight order submissions get 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func newPublisher(cfg config.AMQPConfig, log *zap.Logger) notify.Publisher {
	if cfg.URL == "" {
		log.Info("AMQP_URL not set, order events are only logged")
		return notify.NewNoopPublisher(log)
	}

	publisher, err := notify.DialAMQP(cfg.URL, cfg.Queue, log)
	if err != nil {
		log.Fatal("Failed to connect order publisher", zap.Error(err))
	}
	log.Info("Publishing order events", zap.String("queue", cfg.Queue))
	return publisher
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Cicli Volante API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("catalog", cfg.Catalog.Source),
	)

	// Initialize database
	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	db := dbService.DB()
	log.Info("Database health check", zap.Any("health", dbService.Health()))

	// Run migrations
	if err := database.RunMigrations(db, migrations.FS, ".", log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully")
	if !cfg.IsProduction() {
		if err := database.GetMigrationStatus(db, migrations.FS, "."); err != nil {
			log.Warn("Failed to read migration status", zap.Error(err))
		}
	}

	// Initialize Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cancel()

	publisher := newPublisher(cfg.AMQP, log)

	productRepo, err := server.CatalogRepository(cfg.Catalog, db)
	if err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}

	// Seed the admin account and, for the database catalog, the demo products
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), time.Minute)
	adminService := service.NewAdminService(
		repository.NewAdminRepository(db),
		repository.NewSessionRepository(redisClient),
		cfg.Session.Secret,
		cfg.Session.TTL,
		log,
	)
	if err := seed.Admin(seedCtx, adminService, cfg.Admin.Username, cfg.Admin.Password, log); err != nil {
		cancelSeed()
		log.Fatal("Failed to seed admin account", zap.Error(err))
	}
	if cfg.Catalog.Source == config.CatalogSourceDatabase && cfg.Catalog.Seed {
		if _, err := seed.Products(seedCtx, productRepo, log); err != nil {
			cancelSeed()
			log.Fatal("Failed to seed catalog", zap.Error(err))
		}
	}
	cancelSeed()

	// Create server
	srv := server.NewServer(cfg, log, dbService, redisClient, publisher, productRepo)

	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
