package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yugaldekate/pingpanda/config"
	"github.com/yugaldekate/pingpanda/internal/api/handlers"
	"github.com/yugaldekate/pingpanda/internal/api/middleware"
	"github.com/yugaldekate/pingpanda/internal/metrics"
	"github.com/yugaldekate/pingpanda/internal/repository"
	"github.com/yugaldekate/pingpanda/internal/search"
	"github.com/yugaldekate/pingpanda/internal/service"
)

// Services bundles everything the HTTP server serves
type Services struct {
	Repo     repository.Repository
	Ingest   *service.IngestService
	Category *service.CategoryService
	User     *service.UserService
	Billing  *service.BillingService
	Elastic  *search.ElasticClient
	Metrics  *metrics.Metrics
}

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	services   Services
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, services Services) *Server {
	server := &Server{
		config:   cfg,
		services: services,
	}

	server.router = server.setupRouter()
	server.httpServer = &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      server.router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
	}

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	eventHandler := handlers.NewEventHandler(s.services.Ingest, s.services.Elastic)
	categoryHandler := handlers.NewCategoryHandler(s.services.Category)
	userHandler := handlers.NewUserHandler(s.services.User)
	billingHandler := handlers.NewBillingHandler(s.services.Billing)
	metricsHandler := handlers.NewMetricsHandler(s.services.Metrics)

	// Ingestion: API key only
	router.POST("/api/v1/events",
		middleware.APIKeyAuth(s.services.Repo),
		eventHandler.HandleIngestEvent)

	// Payment webhooks authenticate by signature, not session
	router.POST("/api/v1/webhooks/stripe", billingHandler.HandleStripeWebhook)

	session := router.Group("/api/v1", middleware.SessionAuth(s.services.Repo, s.config.Auth.SessionSecret))
	session.POST("/auth/sync", userHandler.HandleSyncIdentity)

	account := session.Group("", middleware.RequireUser())
	{
		account.GET("/categories", categoryHandler.HandleListCategories)
		account.POST("/categories", categoryHandler.HandleCreateCategory)
		account.DELETE("/categories/:name", categoryHandler.HandleDeleteCategory)
		account.GET("/categories/:name/events", categoryHandler.HandleListCategoryEvents)
		account.GET("/events/search", eventHandler.HandleSearchEvents)
		account.GET("/usage", userHandler.HandleGetUsage)
		account.GET("/api-key", userHandler.HandleGetAPIKey)
		account.PUT("/settings", userHandler.HandleUpdateSettings)
		account.POST("/billing/checkout", billingHandler.HandleCreateCheckout)
	}

	router.GET("/health", metricsHandler.HandleGetHealthCheck)
	router.GET("/metrics", metricsHandler.HandleGetMetrics)

	return router
}

// Router exposes the configured router, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
