package bridge

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChardPeter/chaddybot-bridge/internal/decision"
	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
	"github.com/ChardPeter/chaddybot-bridge/internal/parser"
	"github.com/ChardPeter/chaddybot-bridge/internal/prompt"
)

// stubCompleter stands in for the provider client.
type stubCompleter struct {
	mu    sync.Mutex
	calls int

	text  string
	err   error
	delay time.Duration
	panic bool
}

func (s *stubCompleter) Complete(ctx context.Context, instruction, marketContext string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.panic {
		panic("completer exploded")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", apperrors.ErrDeadlineExceeded
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func (s *stubCompleter) Model() string { return "stub-model" }

func (s *stubCompleter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestPipeline(c *stubCompleter, deadline time.Duration) *Pipeline {
	logger := zerolog.Nop()
	return NewPipeline(c, parser.New(logger), prompt.Default(), deadline, logger)
}

func TestDecideStructured(t *testing.T) {
	stub := &stubCompleter{
		text: `Here is my call.
{"decision": "BUY", "sl": 1.0800, "tp": 1.0950, "lot_size": 0.5, "trail_active": true, "reason": "momentum breakout"}`,
	}
	p := newTestPipeline(stub, 5*time.Second)

	res := p.Decide(context.Background(), "EURUSD 1.0875, RSI 62, MACD rising", "req-1")

	if res.Outcome != "ok" {
		t.Fatalf("expected outcome ok, got %q (class %q)", res.Outcome, res.Class)
	}
	if res.Dialect != "structured" {
		t.Errorf("expected structured dialect, got %q", res.Dialect)
	}
	d := res.Decision
	if d.Decision != decision.Buy {
		t.Errorf("expected BUY, got %s", d.Decision)
	}
	if d.StopLoss != 1.08 || d.TakeProfit != 1.095 || d.LotSize != 0.5 {
		t.Errorf("unexpected levels: sl=%v tp=%v lot=%v", d.StopLoss, d.TakeProfit, d.LotSize)
	}
	if !d.TrailActive {
		t.Error("expected trail_active true")
	}
	if d.Reason != "momentum breakout" {
		t.Errorf("unexpected reason %q", d.Reason)
	}
	if got := stub.callCount(); got != 1 {
		t.Errorf("expected exactly one completion call, got %d", got)
	}
}

func TestDecideLineDialect(t *testing.T) {
	stub := &stubCompleter{
		text: "SELL\nSL: 1.0950\nTP: 1.0780\nLOT_SIZE: 0.25\nTRAIL: ON\nREASON: rejection at daily resistance",
	}
	p := newTestPipeline(stub, 5*time.Second)

	res := p.Decide(context.Background(), "EURUSD testing resistance", "req-2")

	if res.Outcome != "ok" {
		t.Fatalf("expected outcome ok, got %q", res.Outcome)
	}
	if res.Dialect != "lines" {
		t.Errorf("expected lines dialect, got %q", res.Dialect)
	}
	d := res.Decision
	if d.Decision != decision.Sell {
		t.Errorf("expected SELL, got %s", d.Decision)
	}
	if d.StopLoss != 1.095 || d.TakeProfit != 1.078 || d.LotSize != 0.25 {
		t.Errorf("unexpected levels: sl=%v tp=%v lot=%v", d.StopLoss, d.TakeProfit, d.LotSize)
	}
	if !d.TrailActive {
		t.Error("expected trail_active true")
	}
	if d.Reason != "rejection at daily resistance" {
		t.Errorf("unexpected reason %q", d.Reason)
	}
}

func TestDecideDowngradesIncompleteOrder(t *testing.T) {
	stub := &stubCompleter{
		text: `{"decision": "BUY", "sl": 0, "tp": 1.0950, "lot_size": 0.5, "reason": "half-baked"}`,
	}
	p := newTestPipeline(stub, 5*time.Second)

	res := p.Decide(context.Background(), "EURUSD drifting", "req-3")

	if res.Outcome != "ok" {
		t.Fatalf("expected outcome ok, got %q", res.Outcome)
	}
	d := res.Decision
	if d.Decision != decision.Hold {
		t.Errorf("expected downgrade to HOLD, got %s", d.Decision)
	}
	if d.StopLoss != 0 || d.TakeProfit != 0 || d.LotSize != 0 {
		t.Errorf("expected zeroed levels, got sl=%v tp=%v lot=%v", d.StopLoss, d.TakeProfit, d.LotSize)
	}
}

func TestDecideEmptyContext(t *testing.T) {
	stub := &stubCompleter{text: "BUY"}
	p := newTestPipeline(stub, 5*time.Second)

	res := p.Decide(context.Background(), "   \n\t  ", "req-4")

	if res.Outcome != "fallback" {
		t.Fatalf("expected fallback, got %q", res.Outcome)
	}
	if res.Class != "input" {
		t.Errorf("expected input class, got %q", res.Class)
	}
	if res.Decision.Decision != decision.Hold {
		t.Errorf("expected HOLD fallback, got %s", res.Decision.Decision)
	}
	if got := stub.callCount(); got != 0 {
		t.Errorf("empty context must not reach the provider, got %d calls", got)
	}
}

func TestDecideUpstreamFailure(t *testing.T) {
	stub := &stubCompleter{err: apperrors.NewUpstreamError(429, "rate limited", nil)}
	p := newTestPipeline(stub, 5*time.Second)

	res := p.Decide(context.Background(), "EURUSD quiet", "req-5")

	if res.Outcome != "fallback" {
		t.Fatalf("expected fallback, got %q", res.Outcome)
	}
	if res.Class != "upstream" {
		t.Errorf("expected upstream class, got %q", res.Class)
	}
	d := res.Decision
	if d.Decision != decision.Hold {
		t.Errorf("expected HOLD fallback, got %s", d.Decision)
	}
	if d.StopLoss != 0 || d.TakeProfit != 0 || d.LotSize != 0 || d.TrailActive {
		t.Errorf("fallback must carry zeroed fields: %+v", d)
	}
	if !strings.Contains(d.Reason, "upstream error [429]") {
		t.Errorf("unexpected fallback reason %q", d.Reason)
	}
	if got := stub.callCount(); got != 1 {
		t.Errorf("expected exactly one attempt, no retries, got %d", got)
	}
}

func TestDecideParseFailure(t *testing.T) {
	// A blank completion defeats both dialects.
	stub := &stubCompleter{text: ""}
	p := newTestPipeline(stub, 5*time.Second)

	res := p.Decide(context.Background(), "EURUSD quiet", "req-6")

	if res.Outcome != "fallback" {
		t.Fatalf("expected fallback, got %q", res.Outcome)
	}
	if res.Class != "parse" {
		t.Errorf("expected parse class, got %q", res.Class)
	}
	if res.Decision.Reason != "completion could not be parsed" {
		t.Errorf("unexpected reason %q", res.Decision.Reason)
	}
}

func TestDecideTimeout(t *testing.T) {
	stub := &stubCompleter{text: "BUY", delay: 2 * time.Second}
	p := newTestPipeline(stub, 60*time.Millisecond)

	start := time.Now()
	res := p.Decide(context.Background(), "EURUSD spiking", "req-7")
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Fatalf("timeout fallback took %v, should resolve near the deadline", elapsed)
	}
	if res.Outcome != "fallback" {
		t.Fatalf("expected fallback, got %q", res.Outcome)
	}
	if res.Class != "upstream" {
		t.Errorf("expected upstream class for deadline, got %q", res.Class)
	}
	if res.Decision.Reason != "completion deadline exceeded" {
		t.Errorf("unexpected reason %q", res.Decision.Reason)
	}
}

func TestDecideRecoversPanic(t *testing.T) {
	stub := &stubCompleter{panic: true}
	p := newTestPipeline(stub, 5*time.Second)

	res := p.Decide(context.Background(), "EURUSD chop", "req-8")

	if res.Outcome != "fallback" {
		t.Fatalf("expected fallback after panic, got %q", res.Outcome)
	}
	if res.Class != "internal" {
		t.Errorf("expected internal class, got %q", res.Class)
	}
	if res.Decision.Decision != decision.Hold {
		t.Errorf("expected HOLD fallback, got %s", res.Decision.Decision)
	}
}

func TestDecideMissingCredential(t *testing.T) {
	stub := &stubCompleter{err: apperrors.ErrMissingCredential}
	p := newTestPipeline(stub, 5*time.Second)

	res := p.Decide(context.Background(), "EURUSD flat", "req-9")

	if res.Outcome != "fallback" {
		t.Fatalf("expected fallback, got %q", res.Outcome)
	}
	if res.Decision.Reason != "provider credential not configured" {
		t.Errorf("unexpected reason %q", res.Decision.Reason)
	}
}

func TestDecideMasksLeakedCredentialInReason(t *testing.T) {
	stub := &stubCompleter{
		text: `{"decision": "HOLD", "sl": 0, "tp": 0, "lot_size": 0, "reason": "provider saw sk-abcdefghij1234567890xyz while deciding"}`,
	}
	p := newTestPipeline(stub, 5*time.Second)

	res := p.Decide(context.Background(), "EURUSD quiet", "req-11")

	if res.Outcome != "ok" {
		t.Fatalf("expected ok, got %q", res.Outcome)
	}
	if strings.Contains(res.Decision.Reason, "abcdefghij1234567890") {
		t.Errorf("leaked key survived: %q", res.Decision.Reason)
	}
}

func TestDecideInvalidKindFallsBack(t *testing.T) {
	stub := &stubCompleter{
		text: `{"decision": "LONG", "sl": 1.0800, "tp": 1.0950, "lot_size": 0.5, "reason": "go long"}`,
	}
	p := newTestPipeline(stub, 5*time.Second)

	res := p.Decide(context.Background(), "EURUSD trending", "req-10")

	if res.Outcome != "fallback" {
		t.Fatalf("expected fallback, got %q", res.Outcome)
	}
	if res.Class != "validation" {
		t.Errorf("expected validation class, got %q", res.Class)
	}
	d := res.Decision
	if d.Decision != decision.Hold {
		t.Errorf("expected HOLD fallback, got %s", d.Decision)
	}
	if d.Reason != "completion produced an invalid decision" {
		t.Errorf("unexpected reason %q", d.Reason)
	}
}
