package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"cicli-volante/internal/config"
	"cicli-volante/internal/database"
	"cicli-volante/internal/domain"
	custommiddleware "cicli-volante/internal/middleware"
	"cicli-volante/internal/notify"
	"cicli-volante/internal/repository"
	"cicli-volante/internal/seed"
	"cicli-volante/internal/service"
	"cicli-volante/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const serviceName = "cicli-volante-api"

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	db        database.Service
	redis     redis.UniversalClient
	publisher notify.Publisher
}

// CatalogRepository picks the product store for the configured catalog
// source. The static source serves CATALOG_FILE, or the demo catalog when
// no file is configured.
func CatalogRepository(cfg config.CatalogConfig, db *sql.DB) (repository.ProductRepository, error) {
	switch cfg.Source {
	case config.CatalogSourceDatabase, "":
		return repository.NewProductRepository(db), nil
	case config.CatalogSourceStatic:
		if cfg.File != "" {
			return repository.LoadStaticCatalog(cfg.File)
		}
		return repository.NewStaticProductRepository(seed.DemoCatalog())
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	db database.Service,
	redisClient redis.UniversalClient,
	publisher notify.Publisher,
	productRepo repository.ProductRepository,
) *Server {
	server := &Server{
		config:    cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		publisher: publisher,
	}

	server.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      otelhttp.NewHandler(server.routes(productRepo), serviceName),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

func (s *Server) routes(productRepo repository.ProductRepository) http.Handler {
	cfg := s.config
	logger := s.logger

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.IsProduction()))

	router.Get("/health", s.health)

	payment := domain.PaymentInfo{
		IBAN:        cfg.Payment.IBAN,
		BIC:         cfg.Payment.BIC,
		Bank:        cfg.Payment.Bank,
		Beneficiary: cfg.Payment.Beneficiary,
	}

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(s.db.DB())
	adminRepo := repository.NewAdminRepository(s.db.DB())
	sessionRepo := repository.NewSessionRepository(s.redis)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, s.publisher, payment, logger)
	staticOrderService := service.NewStaticOrderService(payment, s.publisher, logger)
	adminService := service.NewAdminService(adminRepo, sessionRepo, cfg.Session.Secret, cfg.Session.TTL, logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(catalogService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	staticOrderHandler := transport.NewStaticOrderHandler(staticOrderService, logger)
	adminHandler := transport.NewAdminHandler(adminService, cfg.Session.Secure, logger)

	adminSession := custommiddleware.AdminSession(adminService, logger)
	submitLimit := s.rateLimit("rate_limit:orders")
	loginLimit := s.rateLimit("rate_limit:login")

	// Register routes
	productHandler.RegisterRoutes(router, adminSession, custommiddleware.RequireAdminRole(logger))
	orderHandler.RegisterRoutes(router, adminSession, submitLimit)
	staticOrderHandler.RegisterRoutes(router, submitLimit)
	adminHandler.RegisterRoutes(router, adminSession, loginLimit)

	return router
}

func (s *Server) rateLimit(prefix string) func(http.Handler) http.Handler {
	return custommiddleware.RateLimitMiddleware(s.redis, custommiddleware.RateLimitConfig{
		RequestsPerWindow: s.config.RateLimit.Requests,
		Window:            s.config.RateLimit.Window,
		KeyPrefix:         prefix,
	}, s.logger)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{"status": "ok"}

	dbHealth := s.db.Health()
	body["database"] = dbHealth
	if dbHealth["status"] != "up" {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		body["redis"] = "down"
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	} else {
		body["redis"] = "up"
	}

	custommiddleware.RespondWithJSON(w, status, body)
}

// Close releases the database pool, the Redis client and the broker
// connection
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Error("Failed to close order publisher", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close Redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
