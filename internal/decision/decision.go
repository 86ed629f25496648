// Package decision defines the trade decision vocabulary and the
// normalization rules applied to parsed completion output before it is
// returned to a caller.
package decision

import (
	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
)

// Kind is a trade decision kind.
type Kind string

// The closed set of decision kinds. Anything a completion produces is
// mapped into this set before it leaves the bridge.
const (
	Buy              Kind = "BUY"
	Sell             Kind = "SELL"
	Close            Kind = "CLOSE"
	CloseReverseBuy  Kind = "CLOSE_AND_REVERSE_BUY"
	CloseReverseSell Kind = "CLOSE_AND_REVERSE_SELL"
	Hold             Kind = "HOLD"
)

// Valid reports whether k is one of the six known kinds.
func (k Kind) Valid() bool {
	switch k {
	case Buy, Sell, Close, CloseReverseBuy, CloseReverseSell, Hold:
		return true
	}
	return false
}

// OpensPosition reports whether k results in a new open position and
// therefore requires stop loss, take profit and lot size.
func (k Kind) OpensPosition() bool {
	switch k {
	case Buy, Sell, CloseReverseBuy, CloseReverseSell:
		return true
	}
	return false
}

// Flat reports whether k leaves no position open.
func (k Kind) Flat() bool {
	return k == Hold || k == Close
}

// TradeDecision is the bridge's response payload. The field set is fixed;
// expert advisors parse it positionally and reject unknown keys.
type TradeDecision struct {
	Decision    Kind    `json:"decision"`
	StopLoss    float64 `json:"sl"`
	TakeProfit  float64 `json:"tp"`
	LotSize     float64 `json:"lot_size"`
	TrailActive bool    `json:"trail_active"`
	Reason      string  `json:"reason"`
}

// Fallback returns the safe decision served when any stage of the
// pipeline fails: hold, all levels zeroed.
func Fallback(reason string) TradeDecision {
	return TradeDecision{
		Decision: Hold,
		Reason:   reason,
	}
}

// Validate checks the invariants every outgoing decision must hold.
// Normalize always produces a decision that passes; this is the backstop
// for decisions constructed by hand.
func (d TradeDecision) Validate() error {
	if !d.Decision.Valid() {
		return apperrors.NewValidationError("decision", string(d.Decision), "unknown decision kind")
	}

	if d.Decision.OpensPosition() {
		if d.StopLoss <= 0 {
			return apperrors.NewValidationError("sl", d.StopLoss, "must be positive for "+string(d.Decision))
		}
		if d.TakeProfit <= 0 {
			return apperrors.NewValidationError("tp", d.TakeProfit, "must be positive for "+string(d.Decision))
		}
		if d.LotSize <= 0 {
			return apperrors.NewValidationError("lot_size", d.LotSize, "must be positive for "+string(d.Decision))
		}
	}

	if d.Decision.Flat() {
		if d.StopLoss != 0 || d.TakeProfit != 0 || d.LotSize != 0 {
			return apperrors.NewValidationError("levels", d, "must be zero for "+string(d.Decision))
		}
	}

	return nil
}
