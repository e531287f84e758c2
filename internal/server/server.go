package server

import (
	"context"

	"github.com/finking/chat-relay/internal/config"
	"github.com/finking/chat-relay/internal/metrics"
	"github.com/finking/chat-relay/internal/relay"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// serviceName is reported by the health check endpoint
const serviceName = "FinKing AI API"

// Completer is the upstream dependency of the chat handler. The relay client
// satisfies it; tests substitute a stub.
type Completer interface {
	Complete(ctx context.Context, message string) (string, *relay.Error)
	Model() string
}

// Server represents the API server
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	router  *gin.Engine
	relay   Completer
	metrics *metrics.Collector
	version string
}

// New creates a new server instance
func New(cfg *config.Config, logger *zap.Logger, completer Completer, collector *metrics.Collector, version string) (*Server, error) {
	gin.SetMode(cfg.Server.Mode)

	if version == "" {
		version = "1.0.0"
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		router:  gin.New(),
		relay:   completer,
		metrics: collector,
		version: version,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Router returns the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupMiddleware() {
	// Recovery with the generic JSON 500 body
	s.router.Use(gin.CustomRecovery(s.recoveryHandler))

	// Request ID middleware
	s.router.Use(s.requestIDMiddleware())

	// Logger middleware
	s.router.Use(s.loggerMiddleware())

	// CORS middleware
	if s.cfg.Security.EnableCORS {
		s.router.Use(s.corsMiddleware())
	}
}

func (s *Server) setupRoutes() {
	// Front page
	s.setupStaticFiles()

	// Chat API
	s.router.POST("/api/chat", s.handleChat)

	// Health check - no dependencies probed on purpose
	s.router.GET("/api/health", s.healthCheck)

	// Metrics scrape endpoint
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	// Anything unmatched
	s.router.NoRoute(s.notFound)
}
