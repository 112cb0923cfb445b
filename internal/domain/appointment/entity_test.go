package appointment

import (
	"testing"
	"time"

	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
)

func pendingAppointment() *models.Appointment {
	return &models.Appointment{
		ID:                1,
		Status:            string(StatusPending),
		WorkMinutesNeeded: 60,
	}
}

func TestCheckInCheckOutLifecycle(t *testing.T) {
	ap := pendingAppointment()
	start := time.Date(2030, 5, 6, 8, 0, 0, 0, time.UTC)

	if err := CheckIn(ap, start, "gate@warehouse"); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if ap.Status != string(StatusInProgress) {
		t.Fatalf("Status = %s, want in_progress", ap.Status)
	}
	if !ap.ActualStartUTC.Equal(start) {
		t.Fatalf("ActualStartUTC = %v, want %v", ap.ActualStartUTC, start)
	}

	// 72.5 minutes of unloading against a 60 minute prediction.
	end := start.Add(72*time.Minute + 30*time.Second)
	if err := CheckOut(ap, end, nil); err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}

	if ap.Status != string(StatusCompleted) {
		t.Fatalf("Status = %s, want completed", ap.Status)
	}
	if *ap.ActualDurationMin != 72.5 {
		t.Fatalf("ActualDurationMin = %v, want 72.5", *ap.ActualDurationMin)
	}
	if *ap.PredictionErrorMin != 12.5 {
		t.Fatalf("PredictionErrorMin = %v, want 12.5", *ap.PredictionErrorMin)
	}
}

func TestCheckOut_RecordsActualUnits(t *testing.T) {
	ap := pendingAppointment()
	now := time.Now().UTC()

	if err := CheckIn(ap, now, "gate"); err != nil {
		t.Fatal(err)
	}
	units := 42
	if err := CheckOut(ap, now.Add(30*time.Minute), &units); err != nil {
		t.Fatal(err)
	}
	if ap.Units == nil || *ap.Units != 42 {
		t.Fatalf("Units = %v, want 42", ap.Units)
	}
}

func TestCheckOut_BeforeCheckInRejected(t *testing.T) {
	ap := pendingAppointment()

	err := CheckOut(ap, time.Now().UTC(), nil)
	if !httperr.IsInvalidStateTransition(err) {
		t.Fatalf("err = %v, want invalid state transition", err)
	}
}

func TestCheckIn_TwiceRejected(t *testing.T) {
	ap := pendingAppointment()
	now := time.Now().UTC()

	if err := CheckIn(ap, now, "gate"); err != nil {
		t.Fatal(err)
	}
	if err := CheckIn(ap, now, "gate"); !httperr.IsInvalidStateTransition(err) {
		t.Fatalf("second CheckIn err = %v, want invalid state transition", err)
	}
}

func TestUndoCheckIn_ClearsActuals(t *testing.T) {
	ap := pendingAppointment()
	now := time.Now().UTC()

	_ = CheckIn(ap, now, "gate")
	_ = CheckOut(ap, now.Add(time.Hour), nil)

	if err := UndoCheckIn(ap); err != nil {
		t.Fatalf("UndoCheckIn failed: %v", err)
	}

	if ap.Status != string(StatusPending) {
		t.Fatalf("Status = %s, want pending", ap.Status)
	}
	if ap.ActualStartUTC != nil || ap.ActualEndUTC != nil ||
		ap.ActualDurationMin != nil || ap.PredictionErrorMin != nil {
		t.Fatal("actuals must be cleared after undo")
	}
}

func TestCancelAndReactivate(t *testing.T) {
	ap := pendingAppointment()
	now := time.Now().UTC()

	if err := Cancel(ap, now, "truck broke down"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if ap.Status != string(StatusCancelled) || ap.CancelledAt == nil {
		t.Fatalf("cancel not recorded: status=%s cancelledAt=%v", ap.Status, ap.CancelledAt)
	}
	if Active(ap) {
		t.Fatal("cancelled appointment must not hold capacity")
	}

	if err := Reactivate(ap); err != nil {
		t.Fatalf("Reactivate failed: %v", err)
	}
	if ap.Status != string(StatusPending) || ap.CancelledAt != nil || ap.CancellationReason != "" {
		t.Fatal("reactivate must restore a clean pending state")
	}
}

func TestCancel_CompletedRejected(t *testing.T) {
	ap := pendingAppointment()
	now := time.Now().UTC()
	_ = CheckIn(ap, now, "gate")
	_ = CheckOut(ap, now.Add(time.Hour), nil)

	if err := Cancel(ap, now, ""); !httperr.IsInvalidStateTransition(err) {
		t.Fatalf("Cancel on completed err = %v, want invalid state transition", err)
	}
}

func TestSizeForDuration(t *testing.T) {
	cases := []struct {
		minutes float64
		want    Size
	}{
		{10, SizeSmall},
		{45, SizeSmall},
		{45.01, SizeMedium},
		{90, SizeMedium},
		{91, SizeLarge},
		{480, SizeLarge},
	}
	for _, tc := range cases {
		if got := SizeForDuration(tc.minutes); got != tc.want {
			t.Errorf("SizeForDuration(%v) = %s, want %s", tc.minutes, got, tc.want)
		}
	}
}

func TestSizePoints(t *testing.T) {
	if SizeSmall.Points() != 1 || SizeMedium.Points() != 2 || SizeLarge.Points() != 3 {
		t.Fatal("points must be S=1, M=2, L=3")
	}
}

func TestOverlaps_HalfOpen(t *testing.T) {
	base := time.Date(2030, 5, 6, 8, 0, 0, 0, time.UTC)
	ap := &models.Appointment{
		StartUTC: base,
		EndUTC:   base.Add(time.Hour),
	}

	// Touching intervals do not overlap.
	if Overlaps(ap, base.Add(time.Hour), base.Add(2*time.Hour)) {
		t.Fatal("[start, end) must not overlap an interval starting at end")
	}
	if Overlaps(ap, base.Add(-time.Hour), base) {
		t.Fatal("[start, end) must not overlap an interval ending at start")
	}
	if !Overlaps(ap, base.Add(30*time.Minute), base.Add(90*time.Minute)) {
		t.Fatal("partially covering interval must overlap")
	}
}
