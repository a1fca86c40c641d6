package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soundprediction/claimgraph"
	"github.com/soundprediction/claimgraph/pkg/config"
	"github.com/soundprediction/claimgraph/pkg/server/handlers"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// RequestIDHeader carries the caller's request id, echoed on the response.
const RequestIDHeader = "X-Request-ID"

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	router   *gin.Engine
	pipeline claimgraph.ClaimGraph
	server   *http.Server
	logger   *slog.Logger
}

// New creates a new server instance
func New(cfg *config.Config, pipeline claimgraph.ClaimGraph, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:   cfg,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	if s.config.Server.Mode != "" {
		gin.SetMode(s.config.Server.Mode)
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())
	s.router.Use(s.loggingMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Handler returns the configured router. Setup must be called first.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	var (
		ingester claimgraph.DocumentIngester
		finder   claimgraph.ContradictionFinder
		explorer claimgraph.GraphExplorer
	)
	if s.pipeline != nil {
		ingester, finder, explorer = s.pipeline, s.pipeline, s.pipeline
	}

	healthHandler := handlers.NewHealthHandler(explorer)
	documentHandler := handlers.NewDocumentHandler(ingester, s.logger)
	graphHandler := handlers.NewGraphHandler(finder, explorer, s.logger)

	// Health endpoints
	s.router.GET("/", healthHandler.HealthCheck)
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)

	v1 := s.router.Group("/api/v1")
	v1.Use(s.requirePipeline())
	{
		documents := v1.Group("/documents")
		{
			documents.POST("/supporting", documentHandler.IngestSupporting)
			documents.POST("/main", documentHandler.IngestMain)
		}

		v1.POST("/contradictions", graphHandler.Analyze)
		v1.GET("/nodes/:id/walk", graphHandler.Walk)
		v1.GET("/stats", graphHandler.Stats)
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping server")
	return s.server.Shutdown(ctx)
}

// requirePipeline rejects API calls when no pipeline is wired.
func (s *Server) requirePipeline() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.pipeline == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "unavailable",
				"message": "pipeline not initialized",
			})
			return
		}
		c.Next()
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// contextMiddleware tags the request context for completion telemetry.
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, types.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
