package decision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
)

// Field aliases accepted from completion output. Models drift between
// naming conventions even when the prompt pins one down, so the
// normalizer matches a small family per field instead of one exact key.
var (
	kindAliases   = []string{"decision", "action", "signal"}
	slAliases     = []string{"sl", "stop_loss", "stoploss"}
	tpAliases     = []string{"tp", "take_profit", "takeprofit", "tp1"}
	lotAliases    = []string{"lot_size", "lot", "lots", "lotsize"}
	trailAliases  = []string{"trail_active", "trail", "trailing", "trailing_stop"}
	reasonAliases = []string{"reason", "rationale", "comment"}
)

// Normalize maps raw parsed fields into a TradeDecision that satisfies
// every outgoing invariant. A kind outside the six-value set is the one
// failure; everything below it coerces or downgrades: missing levels
// downgrade the kind, junk numerics become zero. The returned notes
// describe each adjustment made and are meant for logging, not for the
// caller-facing response.
func Normalize(fields map[string]any) (TradeDecision, []string, error) {
	var notes []string

	lowered := make(map[string]any, len(fields))
	for k, v := range fields {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}

	raw := strings.ToUpper(strings.TrimSpace(toString(lookup(lowered, kindAliases))))
	// Models spell the reversal kinds with spaces often enough that the
	// mapping is worth doing before the membership check.
	raw = strings.Join(strings.Fields(raw), "_")
	kind := Kind(raw)
	if !kind.Valid() {
		return TradeDecision{}, nil, apperrors.NewValidationError("decision", raw, "unknown decision kind")
	}

	d := TradeDecision{
		Decision:    kind,
		StopLoss:    toFloat(lookup(lowered, slAliases)),
		TakeProfit:  toFloat(lookup(lowered, tpAliases)),
		LotSize:     toFloat(lookup(lowered, lotAliases)),
		TrailActive: toBool(lookup(lowered, trailAliases)),
		Reason:      strings.TrimSpace(toString(lookup(lowered, reasonAliases))),
	}

	if d.Decision.OpensPosition() {
		if d.StopLoss <= 0 || d.TakeProfit <= 0 || d.LotSize <= 0 {
			notes = append(notes, fmt.Sprintf(
				"downgrading %s to HOLD: sl=%v tp=%v lot=%v", d.Decision, d.StopLoss, d.TakeProfit, d.LotSize))
			d.Decision = Hold
		}
	}

	if d.Decision.Flat() {
		d.StopLoss = 0
		d.TakeProfit = 0
		d.LotSize = 0
	}

	return d, notes, nil
}

func lookup(fields map[string]any, aliases []string) any {
	for _, key := range aliases {
		if v, ok := fields[key]; ok {
			return v
		}
	}
	return nil
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", s)
	}
}

// toFloat coerces a parsed value to float64. Anything non-numeric,
// including negative garbage dressed as a string, comes back as zero so
// the downgrade rule can catch it.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(n)
		if s == "" || strings.EqualFold(s, "n/a") {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// toBool applies truthy coercion: booleans pass through, strings match a
// small affirmative set, numbers count as true when nonzero.
func toBool(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "y", "on":
			return true
		}
		return false
	case float64:
		return b != 0
	case int:
		return b != 0
	case json.Number:
		f, err := b.Float64()
		if err != nil {
			return false
		}
		return f != 0
	default:
		return false
	}
}
