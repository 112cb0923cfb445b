package estimator

import (
	"math"
	"strings"
)

// CategoryRatio fills in lines and delivery notes when the caller only
// knows units, using medians from historical unloads.
type CategoryRatio struct {
	LinesPerUnit         float64
	DefaultDeliveryNotes int
}

var estimationRatios = map[string]CategoryRatio{
	"Asientos":    {LinesPerUnit: 0.149, DefaultDeliveryNotes: 4},
	"Baño":        {LinesPerUnit: 0.889, DefaultDeliveryNotes: 1},
	"Cocina":      {LinesPerUnit: 0.119, DefaultDeliveryNotes: 2},
	"Colchonería": {LinesPerUnit: 0.369, DefaultDeliveryNotes: 3},
	"Electro":     {LinesPerUnit: 0.617, DefaultDeliveryNotes: 34},
	"Mobiliario":  {LinesPerUnit: 0.370, DefaultDeliveryNotes: 4},
	"PAE":         {LinesPerUnit: 0.002, DefaultDeliveryNotes: 2},
	"Tapicería":   {LinesPerUnit: 0.467, DefaultDeliveryNotes: 6},
}

// Name variants that show up in booking requests.
var categoryAliases = map[string]string{
	"asientos":                  "Asientos",
	"baño":                      "Baño",
	"bano":                      "Baño",
	"cocina":                    "Cocina",
	"cocinas":                   "Cocina",
	"colchonería":               "Colchonería",
	"colchoneria":               "Colchonería",
	"colchones":                 "Colchonería",
	"electro":                   "Electro",
	"electrodomésticos":         "Electro",
	"electrodomesticos":         "Electro",
	"electros":                  "Electro",
	"mobiliario":                "Mobiliario",
	"muebles":                   "Mobiliario",
	"pae":                       "PAE",
	"pequeño aparato electrónico": "PAE",
	"tapicería":                 "Tapicería",
	"tapiceria":                 "Tapicería",
	"sofás":                     "Tapicería",
	"sofas":                     "Tapicería",
}

// NormalizeCategory maps free-text goods types onto canonical category
// names. Returns "" when nothing matches.
func NormalizeCategory(input string) string {
	if _, ok := estimationRatios[input]; ok {
		return input
	}

	lower := strings.ToLower(strings.TrimSpace(input))
	if canonical, ok := categoryAliases[lower]; ok {
		return canonical
	}

	for alias, canonical := range categoryAliases {
		if strings.Contains(lower, alias) || strings.Contains(alias, lower) {
			return canonical
		}
	}
	return ""
}

func EstimateLines(category string, units int) int {
	ratio, ok := estimationRatios[category]
	if !ok {
		return maxInt(1, int(math.Round(float64(units)*0.3)))
	}
	return maxInt(1, int(math.Round(float64(units)*ratio.LinesPerUnit)))
}

func EstimateDeliveryNotes(category string) int {
	ratio, ok := estimationRatios[category]
	if !ok {
		return 1
	}
	return ratio.DefaultDeliveryNotes
}

// Resolved carries a booking's estimation inputs after ratio fallback.
type Resolved struct {
	Lines              *int
	DeliveryNotesCount *int
	EstimatedFields    []string
}

// ResolveEstimations fills missing lines / delivery-notes counts from
// category ratios when units are known. Fields it filled in are named
// in EstimatedFields so callers can mark them as derived.
func ResolveEstimations(goodsType string, units, lines, deliveryNotes *int) Resolved {
	out := Resolved{Lines: lines, DeliveryNotesCount: deliveryNotes}

	if goodsType == "" || units == nil || *units <= 0 {
		return out
	}
	category := NormalizeCategory(goodsType)
	if category == "" {
		return out
	}

	if out.Lines == nil {
		n := EstimateLines(category, *units)
		out.Lines = &n
		out.EstimatedFields = append(out.EstimatedFields, "lines")
	}
	if out.DeliveryNotesCount == nil {
		n := EstimateDeliveryNotes(category)
		out.DeliveryNotesCount = &n
		out.EstimatedFields = append(out.EstimatedFields, "deliveryNotesCount")
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
