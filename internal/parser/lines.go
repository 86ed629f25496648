package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
)

// LineStrategy extracts a candidate from plain-text completions. The
// direction lives on the first line, labeled fields on the lines below:
//
//	BUY
//	SL: 1.0812
//	TP: 1.0954
//	LOT: 0.5
//	TRAIL: yes
//	Reason: Momentum breakout.
//
// A missing direction defaults to BUY with a logged warning; the
// downstream level checks keep an unsupported default from opening a
// position on its own.
type LineStrategy struct {
	logger zerolog.Logger
}

// NewLineStrategy creates the line dialect strategy.
func NewLineStrategy(logger zerolog.Logger) *LineStrategy {
	return &LineStrategy{logger: logger}
}

// Name returns the dialect name.
func (s *LineStrategy) Name() string {
	return "lines"
}

// Extract parses the line dialect. It fails only on empty input.
func (s *LineStrategy) Extract(raw string) (Candidate, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, apperrors.NewParseError(s.Name(), "empty completion text")
	}

	lines := strings.Split(text, "\n")
	candidate := Candidate{}

	// Direction comes from the first line only. When both words appear,
	// the leftmost occurrence wins.
	first := strings.ToUpper(lines[0])
	buyAt := strings.Index(first, "BUY")
	sellAt := strings.Index(first, "SELL")
	switch {
	case buyAt >= 0 && (sellAt < 0 || buyAt < sellAt):
		candidate["decision"] = "BUY"
	case sellAt >= 0:
		candidate["decision"] = "SELL"
	default:
		s.logger.Warn().Str("first_line", lines[0]).Msg("no direction on first line, defaulting to BUY")
		candidate["decision"] = "BUY"
	}

	tpSet := false
	lastFree := ""
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		upper := strings.ToUpper(trimmed)

		if val, ok := labelValue(upper, trimmed, "SL:"); ok {
			setFloat(candidate, "sl", val)
		} else if val, ok := tpValue(upper, trimmed); ok {
			// Only the first take profit line counts.
			if !tpSet {
				if setFloat(candidate, "tp", val) {
					tpSet = true
				}
			}
		} else if val, ok := labelValue(upper, trimmed, "LOT_SIZE:"); ok {
			setFloat(candidate, "lot_size", val)
		} else if val, ok := labelValue(upper, trimmed, "LOT:"); ok {
			setFloat(candidate, "lot_size", val)
		} else if val, ok := labelValue(upper, trimmed, "TRAIL:"); ok {
			candidate["trail_active"] = val
		} else if val, ok := labelValue(upper, trimmed, "REASON:"); ok {
			candidate["reason"] = val
		} else if !strings.HasPrefix(upper, "BUY") && !strings.HasPrefix(upper, "SELL") {
			lastFree = trimmed
		}
	}

	// Without a labeled reason, the last free-text line stands in.
	if _, ok := candidate["reason"]; !ok && lastFree != "" {
		candidate["reason"] = lastFree
	}

	return candidate, nil
}

// labelValue matches a case-insensitive label prefix and returns the
// trimmed remainder of the line.
func labelValue(upper, trimmed, label string) (string, bool) {
	if !strings.HasPrefix(upper, label) {
		return "", false
	}
	return strings.TrimSpace(trimmed[len(label):]), true
}

// tpValue matches "TP:" and numbered variants like "TP1:", "TP2:".
func tpValue(upper, trimmed string) (string, bool) {
	if !strings.HasPrefix(upper, "TP") {
		return "", false
	}
	i := 2
	for i < len(upper) && upper[i] >= '0' && upper[i] <= '9' {
		i++
	}
	if i >= len(upper) || upper[i] != ':' {
		return "", false
	}
	return strings.TrimSpace(trimmed[i+1:]), true
}

// setFloat parses a labeled numeric value into the candidate. Junk values
// are dropped so the zero checks downstream see them as missing.
func setFloat(candidate Candidate, key, val string) bool {
	if val == "" || strings.EqualFold(val, "N/A") {
		return false
	}
	var f float64
	if _, err := fmt.Sscanf(val, "%f", &f); err != nil {
		return false
	}
	candidate[key] = f
	return true
}
