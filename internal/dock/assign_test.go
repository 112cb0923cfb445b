package dock

import (
	"context"
	"testing"
	"time"

	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/infra/repository"
	"github.com/dockwise/scheduler/internal/models"
	"github.com/dockwise/scheduler/internal/rules"
)

var (
	day   = time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)
	start = time.Date(2030, 5, 6, 8, 0, 0, 0, time.UTC)
)

func twoDockRepo() *repository.MemoryRepository {
	repo := repository.NewMemoryRepository()
	repo.AddDock(models.Dock{ID: 1, Code: "M1", Name: "Dock M1", SortOrder: 1, Active: true})
	repo.AddDock(models.Dock{ID: 2, Code: "M3", Name: "Dock M3", SortOrder: 2, Active: true})
	return repo
}

func request(r rules.Rules) Request {
	return Request{
		Date:          day,
		SlotStartTime: "08:00",
		Start:         start,
		End:           start.Add(time.Hour),
		SlotEnd:       start.Add(2 * time.Hour),
		Size:          domain.SizeMedium,
		Rules:         r,
	}
}

func TestAssign_PicksFreeDock(t *testing.T) {
	repo := twoDockRepo()
	a := NewAssigner(repo)

	res, err := a.Assign(context.Background(), request(rules.Defaults()))
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if res.DockCode != "M1" || res.Shifted {
		t.Fatalf("result = %+v, want unshifted M1", res)
	}
}

func TestAssign_SkipsOccupiedDock(t *testing.T) {
	repo := twoDockRepo()
	ctx := context.Background()
	dockID := uint(1)
	_ = repo.CreateAppointment(ctx, &models.Appointment{
		DockID: &dockID, StartUTC: start, EndUTC: start.Add(time.Hour), Status: "pending",
	})
	a := NewAssigner(repo)

	res, err := a.Assign(ctx, request(rules.Defaults()))
	if err != nil {
		t.Fatal(err)
	}
	if res.DockCode != "M3" {
		t.Fatalf("DockCode = %s, want M3", res.DockCode)
	}
}

func TestAssign_BufferBlocksAdjacentBooking(t *testing.T) {
	repo := twoDockRepo()
	ctx := context.Background()

	// Both docks busy until exactly the requested start.
	for _, id := range []uint{1, 2} {
		dockID := id
		_ = repo.CreateAppointment(ctx, &models.Appointment{
			DockID: &dockID, StartUTC: start.Add(-time.Hour), EndUTC: start, Status: "pending",
		})
	}

	r := rules.Defaults()
	r.DockBuffer.Enabled = true // 15 minute default

	a := NewAssigner(repo)
	res, err := a.Assign(ctx, request(r))
	if err != nil {
		t.Fatal(err)
	}

	// Back-to-back is fine without the buffer, but with it the search
	// must shift forward one step.
	if !res.Shifted || !res.Start.Equal(start.Add(15*time.Minute)) {
		t.Fatalf("result = %+v, want 15 minute shift", res)
	}
}

func TestAssign_NoDockAvailable(t *testing.T) {
	repo := twoDockRepo()
	ctx := context.Background()

	// Both docks busy for the whole slot.
	for _, id := range []uint{1, 2} {
		dockID := id
		_ = repo.CreateAppointment(ctx, &models.Appointment{
			DockID: &dockID, StartUTC: start, EndUTC: start.Add(2 * time.Hour), Status: "pending",
		})
	}

	a := NewAssigner(repo)
	_, err := a.Assign(ctx, request(rules.Defaults()))
	if !httperr.IsNoDockAvailable(err) {
		t.Fatalf("err = %v, want NoDockAvailableError", err)
	}
}

func TestAssign_SizePreferredDockFirst(t *testing.T) {
	repo := twoDockRepo()
	r := rules.Defaults()
	r.DockDistribution.Enabled = true // M1 large, M3 small

	req := request(r)
	req.Size = domain.SizeSmall

	res, err := NewAssigner(repo).Assign(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.DockCode != "M3" {
		t.Fatalf("small delivery got %s, want preferred M3", res.DockCode)
	}
}

func TestAssign_LeastRecentlyUsedWins(t *testing.T) {
	repo := twoDockRepo()
	ctx := context.Background()

	// M1 was used yesterday, M3 a week ago.
	d1, d2 := uint(1), uint(2)
	_ = repo.CreateAppointment(ctx, &models.Appointment{
		DockID: &d1, StartUTC: start.AddDate(0, 0, -1), EndUTC: start.AddDate(0, 0, -1).Add(time.Hour), Status: "completed",
	})
	_ = repo.CreateAppointment(ctx, &models.Appointment{
		DockID: &d2, StartUTC: start.AddDate(0, 0, -7), EndUTC: start.AddDate(0, 0, -7).Add(time.Hour), Status: "completed",
	})

	res, err := NewAssigner(repo).Assign(ctx, request(rules.Defaults()))
	if err != nil {
		t.Fatal(err)
	}
	if res.DockCode != "M3" {
		t.Fatalf("DockCode = %s, want least recently used M3", res.DockCode)
	}
}

func TestAssign_DateOverrideClosesDock(t *testing.T) {
	repo := twoDockRepo()
	repo.AddDockOverride(models.DockOverride{DockID: 1, Date: day, IsActive: false, Reason: "maintenance"})

	res, err := NewAssigner(repo).Assign(context.Background(), request(rules.Defaults()))
	if err != nil {
		t.Fatal(err)
	}
	// M1 is closed; the assigner must fall through to M3.
	if res.DockCode != "M3" {
		t.Fatalf("DockCode = %s, want M3", res.DockCode)
	}
}

func TestAssign_MaxSimultaneousLimitsWholeWarehouse(t *testing.T) {
	repo := twoDockRepo()
	ctx := context.Background()

	// Two overlapping appointments system-wide fill the default limit.
	d1 := uint(1)
	for i := 0; i < 2; i++ {
		_ = repo.CreateAppointment(ctx, &models.Appointment{
			DockID: &d1, StartUTC: start, EndUTC: start.Add(30 * time.Minute), Status: "pending",
		})
	}

	r := rules.Defaults()
	r.MaxSimultaneous.Enabled = true // count 2

	res, err := NewAssigner(repo).Assign(ctx, request(r))
	if err != nil {
		t.Fatal(err)
	}
	// The first half hour is saturated; 08:30 is the first step where
	// fewer than two appointments run.
	if !res.Start.Equal(start.Add(30 * time.Minute)) {
		t.Fatalf("Start = %v, want shift past the saturated window", res.Start)
	}
}
