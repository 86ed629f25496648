package cli

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFormatProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("TruncateString never exceeds the limit", prop.ForAll(
		func(s string, maxLen int) bool {
			truncated := TruncateString(s, maxLen)
			if len(truncated) > maxLen && len(s) > maxLen {
				t.Logf("TruncateString(%q, %d) = %q (len %d)", s, maxLen, truncated, len(truncated))
				return false
			}
			return true
		},
		gen.AnyString(),
		gen.IntRange(0, 200),
	))

	properties.Property("TruncateString keeps short strings intact", prop.ForAll(
		func(s string) bool {
			return TruncateString(s, len(s)) == s
		},
		gen.AnyString(),
	))

	properties.Property("PadRight reaches the requested width", prop.ForAll(
		func(s string, width int) bool {
			padded := PadRight(s, width)
			if len(s) >= width {
				return padded == s
			}
			return len(padded) == width && strings.HasPrefix(padded, s)
		},
		gen.AlphaString(),
		gen.IntRange(0, 80),
	))

	properties.Property("FormatPercent signs positive values", prop.ForAll(
		func(value float64) bool {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return true
			}
			formatted := FormatPercent(value)
			if !strings.HasSuffix(formatted, "%") {
				return false
			}
			if value > 0 && !strings.HasPrefix(formatted, "+") {
				t.Logf("Expected + prefix for %f, got %s", value, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-100, 100),
	))

	properties.Property("FormatPrice renders zero as a dash", prop.ForAll(
		func(price float64) bool {
			formatted := FormatPrice(price)
			if price == 0 {
				return formatted == "-"
			}
			return formatted != "-" && strings.Contains(formatted, ".")
		},
		gen.Float64Range(0, 5000),
	))

	properties.Property("FormatDuration is always non-empty and unit-tagged", prop.ForAll(
		func(ms int64) bool {
			d := time.Duration(ms) * time.Millisecond
			formatted := FormatDuration(d)
			if formatted == "" {
				return false
			}
			return strings.ContainsAny(formatted, "smh")
		},
		gen.Int64Range(0, int64(48*time.Hour/time.Millisecond)),
	))

	properties.TestingRun(t)
}

func TestFormatPriceExamples(t *testing.T) {
	testCases := []struct {
		price    float64
		expected string
	}{
		{0, "-"},
		{1.0875, "1.08750"},
		{0.65432, "0.65432"},
		{154.325, "154.325"},
		{2330.25, "2330.25"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := FormatPrice(tc.price)
			if result != tc.expected {
				t.Errorf("FormatPrice(%f) = %s, want %s", tc.price, result, tc.expected)
			}
		})
	}
}

func TestFormatDurationExamples(t *testing.T) {
	testCases := []struct {
		d        time.Duration
		expected string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := FormatDuration(tc.d)
			if result != tc.expected {
				t.Errorf("FormatDuration(%v) = %s, want %s", tc.d, result, tc.expected)
			}
		})
	}
}

func TestFormatLot(t *testing.T) {
	if got := FormatLot(0); got != "-" {
		t.Errorf("FormatLot(0) = %s, want -", got)
	}
	if got := FormatLot(0.5); got != "0.50" {
		t.Errorf("FormatLot(0.5) = %s, want 0.50", got)
	}
}

func TestFormatTimeHelpersRenderUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	ts := time.Date(2025, time.November, 30, 17, 45, 10, 0, loc)

	if got := FormatTime(ts); got != "14:45:10" {
		t.Errorf("FormatTime = %s, want 14:45:10", got)
	}
	if got := FormatDate(ts); got != "30-Nov-2025" {
		t.Errorf("FormatDate = %s, want 30-Nov-2025", got)
	}
	if got := FormatDateTime(ts); got != "30-Nov-2025 14:45:10" {
		t.Errorf("FormatDateTime = %s, want 30-Nov-2025 14:45:10", got)
	}
}
