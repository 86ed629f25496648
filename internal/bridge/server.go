package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ChardPeter/chaddybot-bridge/internal/auth"
	"github.com/ChardPeter/chaddybot-bridge/internal/config"
	"github.com/ChardPeter/chaddybot-bridge/internal/decision"
	"github.com/ChardPeter/chaddybot-bridge/internal/journal"
	"github.com/ChardPeter/chaddybot-bridge/internal/logging"
	"github.com/ChardPeter/chaddybot-bridge/internal/metrics"
)

// decisionRequest is the body of POST /decision.
type decisionRequest struct {
	MarketContext string `json:"market_context"`
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Time   string `json:"time"`
}

// Server is the bridge HTTP surface.
type Server struct {
	cfg      *config.Config
	pipeline *Pipeline
	gate     *auth.Gate
	journal  *journal.Store
	logger   zerolog.Logger
}

// NewServer wires the HTTP surface. journalStore may be nil.
func NewServer(cfg *config.Config, pipeline *Pipeline, gate *auth.Gate, journalStore *journal.Store, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		gate:     gate,
		journal:  journalStore,
		logger:   logging.WithComponent(logger, "server"),
	}

	if !gate.Configured() {
		s.logger.Warn().Msg("shared secret not configured, every decision request will be rejected")
	}
	if !cfg.HasProviderCredential() {
		s.logger.Warn().Msg("provider credential not configured, decisions will fail fast")
	}

	return s
}

// Routes builds the handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/decision", s.handleDecision)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	return s.recoverPanics(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Int("port", s.cfg.Server.Port).
			Str("model", s.pipeline.Model()).
			Str("variant", s.pipeline.Variant()).
			Msg("bridge listening")
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

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	start := time.Now()

	if err := s.gate.Check(r); err != nil {
		metrics.IncAuthReject()
		metrics.ObserveRequest("unauthorized", time.Since(start))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	requestID := uuid.NewString()

	// A body that does not decode leaves the context empty; the pipeline
	// turns that into an input fallback rather than a transport error.
	var req decisionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	res := s.pipeline.Decide(r.Context(), req.MarketContext, requestID)

	writeJSON(w, http.StatusOK, res.Decision)
	metrics.ObserveRequest(res.Outcome, time.Since(start))

	if s.journal != nil {
		go s.record(requestID, start, res)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Model:  s.pipeline.Model(),
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// record journals a served decision after the response is on the wire.
func (s *Server) record(requestID string, start time.Time, res Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.journal.Record(ctx, journal.Entry{
		ID:           requestID,
		RequestedAt:  start.UTC(),
		Decision:     string(res.Decision.Decision),
		StopLoss:     res.Decision.StopLoss,
		TakeProfit:   res.Decision.TakeProfit,
		LotSize:      res.Decision.LotSize,
		TrailActive:  res.Decision.TrailActive,
		Reason:       res.Decision.Reason,
		Dialect:      res.Dialect,
		Outcome:      res.Outcome,
		FailureClass: res.Class,
		Model:        s.pipeline.Model(),
		DurationMS:   time.Since(start).Milliseconds(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID).Msg("journal write failed")
	}
}

// recoverPanics keeps a handler panic from dropping the connection with
// no response. A decision request still gets its schema-valid fallback.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				if !sw.wrote {
					if r.URL.Path == "/decision" {
						writeJSON(sw, http.StatusOK, decision.Fallback("internal error"))
					} else {
						writeJSON(sw, http.StatusInternalServerError, map[string]string{"error": "internal error"})
					}
				}
			}
		}()
		next.ServeHTTP(sw, r)
	})
}

// statusWriter tracks whether a response reached the wire.
type statusWriter struct {
	http.ResponseWriter
	wrote bool
}

func (w *statusWriter) WriteHeader(code int) {
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
