package capacity

import (
	"context"
	"testing"
	"time"

	"github.com/dockwise/scheduler/internal/infra/repository"
	"github.com/dockwise/scheduler/internal/models"
	"github.com/dockwise/scheduler/internal/timezone"
)

// 2030-05-06 is a Monday.
var monday = time.Date(2030, 5, 6, 0, 0, 0, 0, testLoc())

func testLoc() *time.Location {
	return timezone.Location(timezone.DefaultTimezone)
}

func seededRepo() *repository.MemoryRepository {
	repo := repository.NewMemoryRepository()
	repo.AddTemplate(models.SlotTemplate{
		ID: 1, DayOfWeek: 1, StartTime: "08:00", EndTime: "10:00", MaxPoints: 6, Active: true,
	})
	repo.AddTemplate(models.SlotTemplate{
		ID: 2, DayOfWeek: 1, StartTime: "14:00", EndTime: "16:00", MaxPoints: 4, Active: true,
	})
	return repo
}

func TestSlotsForDate_TemplatesOnly(t *testing.T) {
	repo := seededRepo()
	r := NewResolver(repo, testLoc())

	slots, err := r.SlotsForDate(context.Background(), monday)
	if err != nil {
		t.Fatalf("SlotsForDate failed: %v", err)
	}

	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].StartTime != "08:00" || slots[0].MaxPoints != 6 {
		t.Fatalf("first slot = %+v", slots[0])
	}
	if slots[1].StartTime != "14:00" || slots[1].MaxPoints != 4 {
		t.Fatalf("second slot = %+v", slots[1])
	}
}

func TestSlotsForDate_NoTemplatesForDay(t *testing.T) {
	repo := seededRepo()
	r := NewResolver(repo, testLoc())

	sunday := monday.AddDate(0, 0, -1)
	slots, err := r.SlotsForDate(context.Background(), sunday)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots on a day without templates, want 0", len(slots))
	}
}

func TestSlotsForDate_WindowOverrideReplacesTemplate(t *testing.T) {
	repo := seededRepo()
	repo.AddOverride(models.SlotOverride{
		Date: monday, StartTime: "08:00", EndTime: "10:00", MaxPoints: 2, Reason: "inventory count",
	})
	r := NewResolver(repo, testLoc())

	slots, err := r.SlotsForDate(context.Background(), monday)
	if err != nil {
		t.Fatal(err)
	}

	if slots[0].MaxPoints != 2 || !slots[0].IsOverride || slots[0].Reason != "inventory count" {
		t.Fatalf("overridden slot = %+v", slots[0])
	}
	// The other window keeps its template capacity.
	if slots[1].MaxPoints != 4 || slots[1].IsOverride {
		t.Fatalf("untouched slot = %+v", slots[1])
	}
}

func TestSlotsForDate_FullDayOverride(t *testing.T) {
	repo := seededRepo()
	repo.AddOverride(models.SlotOverride{Date: monday, MaxPoints: 0, Reason: "holiday"})
	r := NewResolver(repo, testLoc())

	slots, err := r.SlotsForDate(context.Background(), monday)
	if err != nil {
		t.Fatal(err)
	}
	for _, slot := range slots {
		if slot.MaxPoints != 0 || !slot.IsOverride {
			t.Fatalf("slot %s = %+v, want zero capacity", slot.StartTime, slot)
		}
	}
}

func TestSlotsForDate_OverrideRangeCoversDate(t *testing.T) {
	repo := seededRepo()
	end := monday.AddDate(0, 0, 7)
	repo.AddOverride(models.SlotOverride{Date: monday.AddDate(0, 0, -2), DateEnd: &end, MaxPoints: 1})
	r := NewResolver(repo, testLoc())

	slots, err := r.SlotsForDate(context.Background(), monday)
	if err != nil {
		t.Fatal(err)
	}
	if slots[0].MaxPoints != 1 {
		t.Fatalf("range override not applied: %+v", slots[0])
	}
}

func TestSlotsForDate_QuickAdjustScalesDown(t *testing.T) {
	repo := seededRepo()
	ctx := context.Background()
	if err := repo.SetQuickAdjustment(ctx, monday, string(LevelMuchLess)); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(repo, testLoc())

	slots, err := r.SlotsForDate(ctx, monday)
	if err != nil {
		t.Fatal(err)
	}

	// 6 × 0.50 = 3, 4 × 0.50 = 2
	if slots[0].MaxPoints != 3 || slots[1].MaxPoints != 2 {
		t.Fatalf("scaled = %d/%d, want 3/2", slots[0].MaxPoints, slots[1].MaxPoints)
	}
	if !slots[0].Adjusted {
		t.Fatal("slot must be flagged as adjusted")
	}
}

func TestSlotsForDate_QuickAdjustFloorsAtZero(t *testing.T) {
	repo := repository.NewMemoryRepository()
	repo.AddTemplate(models.SlotTemplate{
		ID: 1, DayOfWeek: 1, StartTime: "08:00", EndTime: "10:00", MaxPoints: 1, Active: true,
	})
	ctx := context.Background()
	_ = repo.SetQuickAdjustment(ctx, monday, string(LevelMinimum))
	r := NewResolver(repo, testLoc())

	slots, err := r.SlotsForDate(ctx, monday)
	if err != nil {
		t.Fatal(err)
	}
	// 1 × 0.25 truncates to 0.
	if slots[0].MaxPoints != 0 {
		t.Fatalf("MaxPoints = %d, want 0", slots[0].MaxPoints)
	}
}

func TestUsage_CountsOverlappingPoints(t *testing.T) {
	repo := seededRepo()
	ctx := context.Background()
	r := NewResolver(repo, testLoc())

	slots, _ := r.SlotsForDate(ctx, monday)
	start, end := r.Window(monday, slots[0])

	_ = repo.CreateAppointment(ctx, &models.Appointment{
		StartUTC: start, EndUTC: start.Add(time.Hour), PointsUsed: 3, Status: "pending",
	})
	_ = repo.CreateAppointment(ctx, &models.Appointment{
		StartUTC: start.Add(time.Hour), EndUTC: end, PointsUsed: 2, Status: "pending",
	})
	// Cancelled bookings do not count.
	_ = repo.CreateAppointment(ctx, &models.Appointment{
		StartUTC: start, EndUTC: end, PointsUsed: 3, Status: "cancelled",
	})

	usage, err := r.Usage(ctx, monday, slots[0], 0)
	if err != nil {
		t.Fatal(err)
	}
	if usage.UsedPoints != 5 || usage.AvailablePoints != 1 {
		t.Fatalf("usage = %d used / %d available, want 5/1", usage.UsedPoints, usage.AvailablePoints)
	}
}

func TestUsage_OverCapacityAfterDownwardAdjust(t *testing.T) {
	repo := seededRepo()
	ctx := context.Background()
	r := NewResolver(repo, testLoc())

	slots, _ := r.SlotsForDate(ctx, monday)
	start, end := r.Window(monday, slots[0])
	_ = repo.CreateAppointment(ctx, &models.Appointment{
		StartUTC: start, EndUTC: end, PointsUsed: 5, Status: "pending",
	})

	// Capacity drops to 3 but the 5 booked points stay.
	_ = repo.SetQuickAdjustment(ctx, monday, string(LevelMuchLess))

	slots, _ = r.SlotsForDate(ctx, monday)
	usage, err := r.Usage(ctx, monday, slots[0], 0)
	if err != nil {
		t.Fatal(err)
	}
	if !usage.OverCapacity {
		t.Fatal("slot must be over capacity")
	}
	if usage.AvailablePoints != 0 {
		t.Fatalf("AvailablePoints = %d, want clamp at 0", usage.AvailablePoints)
	}
}

func TestWeek_SevenDays(t *testing.T) {
	repo := seededRepo()
	r := NewResolver(repo, testLoc())

	week, err := r.Week(context.Background(), monday)
	if err != nil {
		t.Fatal(err)
	}
	if len(week) != 7 {
		t.Fatalf("got %d days, want 7", len(week))
	}
	if week[0].Date != "2030-05-06" || week[6].Date != "2030-05-12" {
		t.Fatalf("week bounds = %s..%s", week[0].Date, week[6].Date)
	}
	if len(week[0].Slots) != 2 || len(week[1].Slots) != 0 {
		t.Fatalf("slot distribution wrong: mon=%d tue=%d", len(week[0].Slots), len(week[1].Slots))
	}
}
