package security

import (
	"fmt"
	"strings"
)

const (
	// MaxMarketContextLen caps the market context accepted from callers.
	// A single request stuffed with megabytes of candles would blow the
	// completion token budget long before the model saw the end of it.
	MaxMarketContextLen = 32768

	// MaxReasonLen caps free-text fields echoed back to callers.
	MaxReasonLen = 1024
)

// InputValidator validates external inputs before they reach the
// completion pipeline.
type InputValidator struct {
	maxContextLen int
}

// NewInputValidator creates a validator with default limits.
func NewInputValidator() *InputValidator {
	return &InputValidator{maxContextLen: MaxMarketContextLen}
}

// NewInputValidatorWithLimit creates a validator with a custom context cap.
func NewInputValidatorWithLimit(maxContextLen int) *InputValidator {
	if maxContextLen <= 0 {
		maxContextLen = MaxMarketContextLen
	}
	return &InputValidator{maxContextLen: maxContextLen}
}

// ValidateMarketContext checks a market context payload for emptiness and
// size. It does not sanitize; callers that accept the payload should pass
// it through SanitizeText before embedding it in a prompt.
func (v *InputValidator) ValidateMarketContext(context string) error {
	if strings.TrimSpace(context) == "" {
		return fmt.Errorf("market context cannot be empty")
	}

	if len(context) > v.maxContextLen {
		return fmt.Errorf("market context too long: %d bytes (max %d)", len(context), v.maxContextLen)
	}

	return nil
}

// SanitizeText removes control characters from text input. Printable
// runes, newlines and tabs survive so candle tables keep their shape.
func SanitizeText(text string) string {
	var result strings.Builder
	for _, r := range text {
		if r >= 32 || r == '\n' || r == '\t' {
			if r != 127 {
				result.WriteRune(r)
			}
		}
	}
	return result.String()
}

// MaskCredential masks a credential for safe logging.
// Shows first 4 and last 4 characters for credentials longer than 12 chars.
func MaskCredential(credential string) string {
	if credential == "" {
		return ""
	}

	length := len(credential)

	if length <= 8 {
		return strings.Repeat("*", length)
	}

	if length <= 12 {
		return credential[:2] + strings.Repeat("*", length-4) + credential[length-2:]
	}

	return credential[:4] + strings.Repeat("*", 8) + credential[length-4:]
}

// MaskSensitive masks sensitive data in a string using known patterns.
func MaskSensitive(input string) string {
	return maskSensitiveInString(input)
}

// ContainsSensitiveData checks if a string contains sensitive patterns.
func ContainsSensitiveData(input string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}
