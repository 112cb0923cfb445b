package estimator

import (
	"context"
	"math"

	"github.com/dockwise/scheduler/internal/httperr"
)

// Estimator predicts unload duration from load characteristics. Pure
// apart from the coefficient lookup; no side effects.
type Estimator struct {
	src Source
}

func New(src Source) *Estimator {
	return &Estimator{src: src}
}

// Estimate returns predicted unload minutes for a load. Unknown
// categories fall back to the global default coefficient set; negative
// counts are rejected before anything else.
func (e *Estimator) Estimate(
	ctx context.Context,
	category string,
	units int,
	lines int,
	deliveryNotes int,
) (float64, error) {

	switch {
	case units < 0:
		return 0, &httperr.ValidationError{Field: "units", Reason: "must not be negative"}
	case lines < 0:
		return 0, &httperr.ValidationError{Field: "lines", Reason: "must not be negative"}
	case deliveryNotes < 0:
		return 0, &httperr.ValidationError{Field: "deliveryNotesCount", Reason: "must not be negative"}
	}

	canonical := NormalizeCategory(category)

	coeffs := GlobalDefault
	maxMinutes := float64(DefaultMaxMinutes)

	if canonical != "" && e.src != nil {
		c, ceiling, err := e.src.Current(ctx, canonical)
		if err != nil {
			return 0, err
		}
		coeffs = c
		if ceiling > 0 {
			maxMinutes = ceiling
		}
	} else if canonical != "" {
		coeffs = DefaultCoefficients(canonical)
	}

	minutes := Predict(coeffs, units, lines, deliveryNotes)
	return math.Min(minutes, maxMinutes), nil
}

// Predict applies a coefficient set without clamping or lookups.
func Predict(c Coefficients, units, lines, deliveryNotes int) float64 {
	return c.TD +
		c.TA*float64(units) +
		c.TL*float64(lines) +
		c.TU*float64(deliveryNotes)
}
