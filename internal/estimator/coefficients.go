package estimator

import "context"

// Coefficients predict unload duration in minutes:
// minutes = TD + TA·units + TL·lines + TU·deliveryNotes.
type Coefficients struct {
	TD float64 `json:"td"`
	TA float64 `json:"ta"`
	TL float64 `json:"tl"`
	TU float64 `json:"tu"`
}

// Source yields the active coefficient set for a category. The second
// return is the clamp ceiling in minutes (0 means DefaultMaxMinutes).
type Source interface {
	Current(ctx context.Context, category string) (Coefficients, float64, error)
}

// DefaultMaxMinutes bounds any single estimate so pathological inputs
// cannot inflate a slot's point cost.
const DefaultMaxMinutes = 480

// Seed coefficients fitted from historical unload data. Replaced per
// category by the calibration engine.
var defaultCoefficients = map[string]Coefficients{
	"Asientos":    {TD: 48.88, TA: 5.49, TL: 0.00, TU: 1.06},
	"Baño":        {TD: 3.11, TA: 11.29, TL: 0.61, TU: 0.00},
	"Cocina":      {TD: 10.67, TA: 0.00, TL: 4.95, TU: 0.04},
	"Colchonería": {TD: 14.83, TA: 0.00, TL: 4.95, TU: 0.12},
	"Electro":     {TD: 33.49, TA: 0.81, TL: 0.00, TU: 0.31},
	"Mobiliario":  {TD: 23.20, TA: 0.00, TL: 2.54, TU: 0.25},
	"PAE":         {TD: 6.67, TA: 8.33, TL: 0.00, TU: 0.00},
	"Tapicería":   {TD: 34.74, TA: 0.00, TL: 2.25, TU: 0.10},
}

// GlobalDefault applies when the category is unknown.
var GlobalDefault = Coefficients{TD: 15, TA: 1, TL: 1, TU: 0.2}

// DefaultCoefficients returns the seed set for a canonical category,
// falling back to GlobalDefault.
func DefaultCoefficients(category string) Coefficients {
	if c, ok := defaultCoefficients[category]; ok {
		return c
	}
	return GlobalDefault
}

// Categories lists the canonical category names with seed coefficients.
func Categories() []string {
	out := make([]string, 0, len(defaultCoefficients))
	for c := range defaultCoefficients {
		out = append(out, c)
	}
	return out
}
