// Package bridge runs the decision pipeline and its HTTP surface.
package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChardPeter/chaddybot-bridge/internal/decision"
	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
	"github.com/ChardPeter/chaddybot-bridge/internal/llm"
	"github.com/ChardPeter/chaddybot-bridge/internal/logging"
	"github.com/ChardPeter/chaddybot-bridge/internal/metrics"
	"github.com/ChardPeter/chaddybot-bridge/internal/parser"
	"github.com/ChardPeter/chaddybot-bridge/internal/prompt"
	"github.com/ChardPeter/chaddybot-bridge/internal/security"
	"github.com/ChardPeter/chaddybot-bridge/pkg/utils"
)

// Result is the outcome of one decision request. Decision is always
// schema valid; Outcome and Class tell the caller whether it came from a
// completion or from the fallback path.
type Result struct {
	Decision decision.TradeDecision
	Outcome  string // "ok" or "fallback"
	Class    string // error class when Outcome is "fallback"
	Dialect  string // dialect that parsed, empty on fallback
}

// Pipeline turns market context into a trade decision: one completion
// call, parse, normalize. It never returns an error; every failure
// becomes a HOLD fallback.
type Pipeline struct {
	completer llm.Completer
	parser    *parser.Parser
	variant   prompt.Variant
	validator *security.InputValidator
	deadline  time.Duration
	logger    zerolog.Logger
}

// NewPipeline creates a pipeline. deadline is the outer bound for one
// decision request; the completer is expected to carry a tighter budget
// of its own.
func NewPipeline(completer llm.Completer, p *parser.Parser, variant prompt.Variant, deadline time.Duration, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		completer: completer,
		parser:    p,
		variant:   variant,
		validator: security.NewInputValidator(),
		deadline:  deadline,
		logger:    logging.WithComponent(logger, "pipeline"),
	}
}

// Variant returns the active prompt variant name.
func (p *Pipeline) Variant() string {
	return p.variant.Name
}

// Model returns the completer's model name.
func (p *Pipeline) Model() string {
	return p.completer.Model()
}

// Decide races the pipeline against the outer deadline and returns
// whichever finishes first: the pipeline's decision, or the fallback.
// The losing side is discarded.
func (p *Pipeline) Decide(ctx context.Context, marketContext, requestID string) Result {
	logger := logging.WithRequestID(p.logger, requestID)

	ctx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	type attempt struct {
		d       decision.TradeDecision
		dialect string
		err     error
	}

	// Buffered so the worker can always deliver and exit, even after the
	// timer has won the race.
	ch := make(chan attempt, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- attempt{err: fmt.Errorf("pipeline panic: %v", r)}
			}
		}()
		d, dialect, err := p.run(ctx, marketContext, logger)
		ch <- attempt{d: d, dialect: dialect, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return p.fallback(out.err, logger)
		}
		metrics.IncDecision(string(out.d.Decision))
		logging.LogDecision(logger, string(out.d.Decision), out.d.StopLoss, out.d.TakeProfit, out.d.LotSize, out.d.Reason)
		return Result{Decision: out.d, Outcome: "ok", Dialect: out.dialect}
	case <-ctx.Done():
		return p.fallback(apperrors.ErrDeadlineExceeded, logger)
	}
}

// run executes the pipeline stages in order.
func (p *Pipeline) run(ctx context.Context, marketContext string, logger zerolog.Logger) (decision.TradeDecision, string, error) {
	if err := p.validator.ValidateMarketContext(marketContext); err != nil {
		if strings.TrimSpace(marketContext) == "" {
			return decision.TradeDecision{}, "", apperrors.ErrEmptyContext
		}
		return decision.TradeDecision{}, "", apperrors.NewInputError("market_context", err.Error())
	}

	sanitized := security.SanitizeText(marketContext)

	start := time.Now()
	raw, err := p.completer.Complete(ctx, p.variant.Text, sanitized)
	logging.LogUpstreamCall(logger, p.completer.Model(), time.Since(start), err)
	if err != nil {
		return decision.TradeDecision{}, "", err
	}

	candidate, dialect, err := p.parser.Parse(raw)
	if err != nil {
		return decision.TradeDecision{}, "", err
	}
	logger.Debug().Str("dialect", dialect).Msg("completion parsed")

	d, notes, err := decision.Normalize(candidate)
	if err != nil {
		return decision.TradeDecision{}, "", err
	}
	for _, note := range notes {
		logger.Warn().Str("stage", "normalize").Msg(note)
	}
	// Models sometimes echo the prompt back, so the reason is masked and
	// capped before it ships to the caller or the journal.
	if security.ContainsSensitiveData(d.Reason) {
		logger.Warn().Str("stage", "normalize").Msg("masked credential-shaped text in reason")
		d.Reason = security.MaskSensitive(d.Reason)
	}
	d.Reason = utils.TruncateString(d.Reason, security.MaxReasonLen)

	return d, dialect, nil
}

// fallback builds the safe response for a failed request.
func (p *Pipeline) fallback(err error, logger zerolog.Logger) Result {
	class := apperrors.Classify(err)
	metrics.IncUpstreamFailure(class)
	logging.LogFallback(logger, class, security.MaskSensitive(err.Error()))

	return Result{
		Decision: decision.Fallback(fallbackReason(err)),
		Outcome:  "fallback",
		Class:    class,
	}
}

// fallbackReason maps a failure to the short reason served to callers.
// Error chains can carry upstream body snippets; none of that belongs in
// a response.
func fallbackReason(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrDeadlineExceeded):
		return "completion deadline exceeded"
	case apperrors.Is(err, apperrors.ErrMissingCredential):
		return "provider credential not configured"
	case apperrors.Is(err, apperrors.ErrEmptyContext):
		return "market context is empty"
	case apperrors.Is(err, apperrors.ErrEmptyCompletion):
		return "completion was empty"
	}

	var inputErr *apperrors.InputError
	if apperrors.As(err, &inputErr) {
		return "invalid market context"
	}
	var upstreamErr *apperrors.UpstreamError
	if apperrors.As(err, &upstreamErr) {
		if upstreamErr.Status > 0 {
			return fmt.Sprintf("upstream error [%d]", upstreamErr.Status)
		}
		return "upstream error"
	}
	var parseErr *apperrors.ParseError
	if apperrors.As(err, &parseErr) {
		return "completion could not be parsed"
	}
	var validationErr *apperrors.ValidationError
	if apperrors.As(err, &validationErr) {
		return "completion produced an invalid decision"
	}

	return "internal error"
}
