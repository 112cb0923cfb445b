package capacity

import (
	"context"
	"testing"

	"github.com/dockwise/scheduler/internal/models"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"normal", LevelNormal, true},
		{"reset", LevelNormal, true},
		{"slightly_less", LevelSlightlyLess, true},
		{"much_less", LevelMuchLess, true},
		{"minimum", LevelMinimum, true},
		{"slightly_more", LevelSlightlyMore, true},
		{"half", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseLevel(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("ParseLevel(%q) = %v/%v, want %v/%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestQuickAdjust_ApplyAndReset(t *testing.T) {
	repo := seededRepo()
	ctx := context.Background()
	loc := testLoc()
	resolver := NewResolver(repo, loc)
	adjuster := NewQuickAdjuster(repo, resolver, loc)

	adj, err := adjuster.Apply(ctx, monday, LevelMuchLess)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// Deltas report against unadjusted capacity: 6 -> 3 and 4 -> 2.
	if adj.AdjustedSlots[0].OriginalPoints != 6 || adj.AdjustedSlots[0].NewPoints != 3 {
		t.Fatalf("first delta = %+v", adj.AdjustedSlots[0])
	}
	if adj.AdjustedSlots[1].OriginalPoints != 4 || adj.AdjustedSlots[1].NewPoints != 2 {
		t.Fatalf("second delta = %+v", adj.AdjustedSlots[1])
	}

	slots, _ := resolver.SlotsForDate(ctx, monday)
	if slots[0].MaxPoints != 3 {
		t.Fatalf("resolved MaxPoints = %d, want 3", slots[0].MaxPoints)
	}

	level, err := adjuster.Current(ctx, monday)
	if err != nil || level != LevelMuchLess {
		t.Fatalf("Current = %v/%v, want much_less", level, err)
	}

	// Reset restores the full template capacity.
	if _, err := adjuster.Apply(ctx, monday, LevelNormal); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	slots, _ = resolver.SlotsForDate(ctx, monday)
	if slots[0].MaxPoints != 6 {
		t.Fatalf("after reset MaxPoints = %d, want 6", slots[0].MaxPoints)
	}
	if level, _ := adjuster.Current(ctx, monday); level != LevelNormal {
		t.Fatalf("after reset level = %v, want normal", level)
	}
}

func TestQuickAdjust_ReplacesPreviousLevel(t *testing.T) {
	repo := seededRepo()
	ctx := context.Background()
	loc := testLoc()
	resolver := NewResolver(repo, loc)
	adjuster := NewQuickAdjuster(repo, resolver, loc)

	if _, err := adjuster.Apply(ctx, monday, LevelMinimum); err != nil {
		t.Fatal(err)
	}

	// A second adjustment scales from the baseline, not from the
	// already-reduced value.
	adj, err := adjuster.Apply(ctx, monday, LevelSlightlyLess)
	if err != nil {
		t.Fatal(err)
	}
	if adj.AdjustedSlots[0].OriginalPoints != 6 || adj.AdjustedSlots[0].NewPoints != 4 {
		// 6 × 0.75 = 4.5, truncated to 4
		t.Fatalf("delta = %+v, want 6 -> 4", adj.AdjustedSlots[0])
	}
}

func TestQuickAdjust_NoSlotsConfigured(t *testing.T) {
	repo := seededRepo()
	ctx := context.Background()
	loc := testLoc()
	adjuster := NewQuickAdjuster(repo, NewResolver(repo, loc), loc)

	tuesday := monday.AddDate(0, 0, 1)
	if _, err := adjuster.Apply(ctx, tuesday, LevelMuchLess); err == nil {
		t.Fatal("expected error for a day without slots")
	}
}

func TestQuickAdjust_DoesNotTouchBookings(t *testing.T) {
	repo := seededRepo()
	ctx := context.Background()
	loc := testLoc()
	resolver := NewResolver(repo, loc)
	adjuster := NewQuickAdjuster(repo, resolver, loc)

	slots, _ := resolver.SlotsForDate(ctx, monday)
	start, end := resolver.Window(monday, slots[0])
	_ = repo.CreateAppointment(ctx, &models.Appointment{
		StartUTC: start, EndUTC: end, PointsUsed: 3, Status: "pending",
	})

	if _, err := adjuster.Apply(ctx, monday, LevelMinimum); err != nil {
		t.Fatal(err)
	}

	ap, err := repo.GetAppointment(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ap.Status != "pending" {
		t.Fatalf("existing booking status = %s, must stay pending", ap.Status)
	}
}
