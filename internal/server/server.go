// Package server exposes the document pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"docscan/internal/config"
	"docscan/internal/logger"
	"docscan/internal/pipeline"
	"docscan/pkg/models"
)

// healthProbeTimeout bounds the engine availability check on /health.
const healthProbeTimeout = 10 * time.Second

// Server wires the pipeline to the gin router.
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	version  string
	log      zerolog.Logger
}

// New builds a server around an assembled pipeline.
func New(cfg *config.Config, p *pipeline.Pipeline, version string) *Server {
	return &Server{
		cfg:      cfg,
		pipeline: p,
		version:  version,
		log:      logger.WithComponent("server"),
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)
	router.POST("/process", s.handleProcess)

	return router
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	addr := s.cfg.Addr()
	s.log.Info().Str("addr", addr).Msg("starting HTTP server")
	return s.Router().Run(addr)
}

// handleHealth reports service liveness and whether the recognition engine
// can actually be exercised.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	available := true
	if err := s.pipeline.Engine().Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("engine availability probe failed")
		available = false
	}

	c.JSON(http.StatusOK, models.HealthStatus{
		Status:             "healthy",
		Version:            s.version,
		TesseractAvailable: available,
	})
}

// handleProcess accepts a multipart image upload and runs it through the
// pipeline. Unsupported formats and oversized uploads are request
// rejections, not pipeline failures.
func (s *Server) handleProcess(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("missing file upload: %v", err)})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !s.cfg.SupportsFormat(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unsupported file type: %s, supported: %v", contentType, s.cfg.SupportedFormats),
		})
		return
	}

	if header.Size > s.cfg.MaxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large: maximum size is %d bytes", s.cfg.MaxImageSize),
		})
		return
	}

	raw, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to read upload: %v", err)})
		return
	}
	if int64(len(raw)) > s.cfg.MaxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large: maximum size is %d bytes", s.cfg.MaxImageSize),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.ProcessingTimeout)
	defer cancel()

	result, err := s.pipeline.Process(ctx, raw, pipeline.Options{})
	if err != nil {
		s.log.Error().Err(err).Str("file", header.Filename).Msg("document processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("error processing document: %v", err)})
		return
	}

	c.JSON(http.StatusOK, result)
}
