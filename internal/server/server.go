// Package server is a fixture implementation of the sonification backend.
// It answers uploads from canned analysis files and synthesized audio so the
// client can be exercised without the real service.
package server

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strings"

	"github.com/alkime/sonify/internal/config"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// maxUploadBytes bounds multipart bodies held in memory.
const maxUploadBytes = 32 << 20

// Server represents the HTTP server
type Server struct {
	config   *config.Server
	logger   *slog.Logger
	router   *gin.Engine
	fixtures *Fixtures
}

// New creates a new Server instance
func New(cfg *config.Server, logger *slog.Logger) (*Server, error) {
	// Set Gin mode based on environment
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	for _, dir := range []string{cfg.UploadsDir, cfg.OutputsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Download responses must carry an audio type.
	if err := mime.AddExtensionType(".wav", "audio/wav"); err != nil {
		return nil, fmt.Errorf("failed to register wav mime type: %w", err)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.MaxMultipartMemory = maxUploadBytes

	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}
	logger.Debug("Configured trusted proxies", "proxies", cfg.TrustedProxies)

	server := &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		fixtures: NewFixtures(cfg.FixturesDir),
	}

	// Setup middleware and routes
	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server, nil
}

// Router exposes the handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the HTTP server
func Run(s *Server) error {
	s.logger.Info("Server listening", "port", s.config.Port)
	return s.router.Run(":" + s.config.Port)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/upload", s.handleUpload)

	// Generated audio is served straight from the outputs directory.
	// Missing files fall through to NoRoute.
	s.router.Use(static.Serve("/download", static.LocalFile(s.config.OutputsDir, false)))

	s.router.NoRoute(s.handleNotFound)
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "sonify-fixtures",
	})
}

func (s *Server) handleNotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/download/") {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Audio file not found"})
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
}
