// Package lite is a compact HTTP surface for running the bridge next to
// a single expert advisor. It shares the decision pipeline with the full
// server but carries no journal and no metrics scrape endpoint.
package lite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ChardPeter/chaddybot-bridge/internal/auth"
	"github.com/ChardPeter/chaddybot-bridge/internal/bridge"
	"github.com/ChardPeter/chaddybot-bridge/internal/decision"
	"github.com/ChardPeter/chaddybot-bridge/internal/logging"
	"github.com/ChardPeter/chaddybot-bridge/internal/metrics"
)

type Server struct {
	pipeline *bridge.Pipeline
	gate     *auth.Gate
	logger   zerolog.Logger
	router   *gin.Engine
}

func NewServer(pipeline *bridge.Pipeline, gate *auth.Gate, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		pipeline: pipeline,
		gate:     gate,
		logger:   logging.WithComponent(logger, "lite"),
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(s.recovered))
	s.router = router
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		protected := api.Group("/", s.authMiddleware())
		{
			protected.POST("/decision", s.handleDecision)
		}
	}
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Int("port", port).
			Str("model", s.pipeline.Model()).
			Msg("lite bridge listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.gate.Check(c.Request); err != nil {
			metrics.IncAuthReject()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleDecision(c *gin.Context) {
	start := time.Now()

	var req struct {
		MarketContext string `json:"market_context"`
	}
	_ = c.ShouldBindJSON(&req)

	res := s.pipeline.Decide(c.Request.Context(), req.MarketContext, uuid.NewString())

	c.JSON(http.StatusOK, res.Decision)
	metrics.ObserveRequest(res.Outcome, time.Since(start))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model":  s.pipeline.Model(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// recovered keeps a panicking handler from dropping the connection. A
// decision request still gets its schema-valid fallback.
func (s *Server) recovered(c *gin.Context, rec any) {
	s.logger.Error().Interface("panic", rec).Str("path", c.Request.URL.Path).Msg("handler panic")
	if c.Request.URL.Path == "/api/decision" {
		c.AbortWithStatusJSON(http.StatusOK, decision.Fallback("internal error"))
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
