package decision

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
)

// Property: For any combination of raw field values, Normalize either
// rejects the kind with a ValidationError or produces a decision that
// satisfies every outgoing invariant: the kind is one of the six known
// kinds, opening kinds carry positive levels, flat kinds carry zeros.
func TestProperty_NormalizedOutputAlwaysValid(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("normalized output always validates", prop.ForAll(
		func(kind string, sl, tp, lot float64, trail bool, reason string) bool {
			d, _, err := Normalize(map[string]any{
				"decision":     kind,
				"sl":           sl,
				"tp":           tp,
				"lot_size":     lot,
				"trail_active": trail,
				"reason":       reason,
			})
			if err != nil {
				var vErr *apperrors.ValidationError
				return apperrors.As(err, &vErr)
			}
			return d.Validate() == nil
		},
		gen.AnyString(),
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
		gen.Float64Range(-10, 10),
		gen.Bool(),
		gen.AnyString(),
	))

	properties.Property("string-typed numerics also validate", prop.ForAll(
		func(kind, sl, tp, lot string) bool {
			d, _, err := Normalize(map[string]any{
				"decision": kind,
				"sl":       sl,
				"tp":       tp,
				"lot_size": lot,
			})
			return err == nil && d.Validate() == nil
		},
		gen.OneConstOf("BUY", "SELL", "CLOSE", "HOLD"),
		gen.AnyString(),
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// Property: Normalization only ever downgrades. A recognized kind comes
// out as itself or as HOLD; an unrecognized kind is rejected rather than
// coerced into an opening decision.
func TestProperty_NormalizeOnlyDowngrades(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("output kind is input kind or HOLD", prop.ForAll(
		func(kind string, sl, tp, lot float64) bool {
			in := Kind(strings.Join(strings.Fields(strings.ToUpper(strings.TrimSpace(kind))), "_"))
			d, _, err := Normalize(map[string]any{
				"decision": kind,
				"sl":       sl,
				"tp":       tp,
				"lot_size": lot,
			})
			if !in.Valid() {
				return err != nil
			}
			return err == nil && (d.Decision == in || d.Decision == Hold)
		},
		gen.AnyString(),
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
		gen.Float64Range(-10, 10),
	))

	properties.Property("complete opening decisions are preserved", prop.ForAll(
		func(kind Kind, sl, tp, lot float64) bool {
			d, notes, err := Normalize(map[string]any{
				"decision": string(kind),
				"sl":       sl,
				"tp":       tp,
				"lot_size": lot,
			})
			return err == nil && d.Decision == kind && len(notes) == 0
		},
		gen.OneConstOf(Buy, Sell, CloseReverseBuy, CloseReverseSell),
		gen.Float64Range(0.0001, 10000),
		gen.Float64Range(0.0001, 10000),
		gen.Float64Range(0.01, 100),
	))

	properties.TestingRun(t)
}
