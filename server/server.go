// Package server exposes rule generation over HTTP. POST /api/generate
// streams line-delimited protocol events; GET /healthz reports liveness.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// Server wires the generation service into HTTP handlers.
type Server struct {
	service *Service
	log     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a Server around service.
func New(service *Service, opts ...Option) *Server {
	s := &Server{
		service: service,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.POST("/api/generate", s.handleGenerate)
	r.GET("/healthz", s.handleHealth)
	return r
}

// generateBody is the request DTO for POST /api/generate.
type generateBody struct {
	Message      string                  `json:"message"`
	Messages     []rulecraft.ChatMessage `json:"messages,omitempty"`
	Model        string                  `json:"model,omitempty"`
	Provider     string                  `json:"provider,omitempty"`
	MaxTokens    int                     `json:"max_tokens,omitempty"`
	Temperature  *float64                `json:"temperature,omitempty"`
	RuleType     string                  `json:"rule_type,omitempty"`
	ProjectFiles []string                `json:"project_files,omitempty"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req := rulecraft.GenerateRequest{
		Message:      body.Message,
		Messages:     body.Messages,
		Model:        body.Model,
		Provider:     body.Provider,
		MaxTokens:    body.MaxTokens,
		Temperature:  body.Temperature,
		RuleType:     rulecraft.RuleType(body.RuleType),
		ProjectFiles: body.ProjectFiles,
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	err := s.service.Generate(c.Request.Context(), req, c.Writer)
	if err != nil {
		// Validation failures are returned before the first write, so
		// the status line has not gone out yet and a JSON error is
		// still possible. Anything later was already reported in-band.
		if errors.Is(err, rulecraft.ErrValidation) && !c.Writer.Written() {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("generation failed", "error", err)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
