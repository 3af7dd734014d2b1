package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/tumblrsearch/internal/catalog"
	"github.com/ppiankov/tumblrsearch/internal/logger"
	"github.com/ppiankov/tumblrsearch/internal/metrics"
)

const defaultIdleTimeout = 120 * time.Second

// ServerConfig holds listener settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// SetupRoutes configures all routes.
func SetupRoutes(router *gin.Engine, handler *Handler, m *metrics.Metrics) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	feeds := router.Group(catalog.FeedsPath)
	{
		feeds.GET("", handler.ListFeeds)
		feeds.GET("/:id/", handler.Search)
		feeds.GET("/:id/search", handler.Search)
		feeds.GET("/:id/description", handler.Description)
	}
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(handler *Handler, log logger.Logger, m *metrics.Metrics, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestIDMiddleware(), RecoveryMiddleware(log), LoggerMiddleware(log, m))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:     "no route for " + c.Request.URL.Path,
			Code:      "NOT_FOUND",
			Timestamp: time.Now().UTC(),
		})
	})
	SetupRoutes(router, handler, m)
	return router
}

// Server is the HTTP listener.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	log             logger.Logger
}

// NewServer creates a Server for router.
func NewServer(cfg ServerConfig, router http.Handler, log logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             log,
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", logger.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
