package estimator

import (
	"context"
	"math"
	"testing"
)

func TestEstimate_SeedCoefficients(t *testing.T) {
	est := New(nil)

	// Electro: 33.49 + 0.81·units + 0.31·deliveryNotes
	got, err := est.Estimate(context.Background(), "Electro", 10, 6, 34)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	want := 33.49 + 0.81*10 + 0.0*6 + 0.31*34
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Estimate = %v, want %v", got, want)
	}
}

func TestEstimate_UnknownCategoryUsesGlobalDefault(t *testing.T) {
	est := New(nil)

	got, err := est.Estimate(context.Background(), "Frozen Goods", 20, 10, 5)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	want := 15 + 1.0*20 + 1.0*10 + 0.2*5
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Estimate = %v, want %v", got, want)
	}
}

func TestEstimate_ClampsToMaxMinutes(t *testing.T) {
	est := New(nil)

	got, err := est.Estimate(context.Background(), "Baño", 1000, 0, 0)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if got != DefaultMaxMinutes {
		t.Fatalf("Estimate = %v, want clamp at %d", got, DefaultMaxMinutes)
	}
}

func TestEstimate_RejectsNegativeCounts(t *testing.T) {
	est := New(nil)

	cases := []struct {
		name                        string
		units, lines, deliveryNotes int
	}{
		{"negative units", -1, 0, 0},
		{"negative lines", 0, -1, 0},
		{"negative delivery notes", 0, 0, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := est.Estimate(context.Background(), "Electro", tc.units, tc.lines, tc.deliveryNotes); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Electro", "Electro"},
		{"electrodomesticos", "Electro"},
		{"  SOFAS  ", "Tapicería"},
		{"bano", "Baño"},
		{"muebles", "Mobiliario"},
		{"something else entirely", ""},
	}
	for _, tc := range cases {
		if got := NormalizeCategory(tc.in); got != tc.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveEstimations_FillsMissingFields(t *testing.T) {
	units := 10

	resolved := ResolveEstimations("Mobiliario", &units, nil, nil)

	if resolved.Lines == nil || *resolved.Lines != 4 {
		// 10 × 0.370 = 3.7 rounds to 4
		t.Fatalf("Lines = %v, want 4", resolved.Lines)
	}
	if resolved.DeliveryNotesCount == nil || *resolved.DeliveryNotesCount != 4 {
		t.Fatalf("DeliveryNotesCount = %v, want 4", resolved.DeliveryNotesCount)
	}
	if len(resolved.EstimatedFields) != 2 {
		t.Fatalf("EstimatedFields = %v, want both fields marked", resolved.EstimatedFields)
	}
}

func TestResolveEstimations_KeepsProvidedValues(t *testing.T) {
	units, lines := 10, 25

	resolved := ResolveEstimations("Mobiliario", &units, &lines, nil)

	if *resolved.Lines != 25 {
		t.Fatalf("Lines = %d, provided value must win", *resolved.Lines)
	}
	if len(resolved.EstimatedFields) != 1 || resolved.EstimatedFields[0] != "deliveryNotesCount" {
		t.Fatalf("EstimatedFields = %v, want only deliveryNotesCount", resolved.EstimatedFields)
	}
}

func TestResolveEstimations_LinesFloorIsOne(t *testing.T) {
	units := 1 // 1 × 0.002 rounds to 0, floor lifts it to 1

	resolved := ResolveEstimations("PAE", &units, nil, nil)
	if *resolved.Lines != 1 {
		t.Fatalf("Lines = %d, want floor of 1", *resolved.Lines)
	}
}
