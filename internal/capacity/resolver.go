package capacity

import (
	"context"
	"time"

	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/models"
	"github.com/dockwise/scheduler/internal/timezone"
)

// Slot is the effective capacity of one time window on one date, after
// merging the weekly template, any override and any quick adjustment.
type Slot struct {
	TemplateID uint   `json:"-"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	MaxPoints  int    `json:"max_points"`
	IsOverride bool   `json:"is_override"`
	Reason     string `json:"reason,omitempty"`
	Adjusted   bool   `json:"adjusted"`
}

type SlotUsage struct {
	Slot
	UsedPoints      int `json:"used_points"`
	AvailablePoints int `json:"available_points"`

	// A downward quick adjustment never cancels existing bookings;
	// when they exceed the new ceiling the slot reads as over capacity.
	OverCapacity bool `json:"over_capacity,omitempty"`
}

type DaySlots struct {
	Date      string      `json:"date"`
	DayOfWeek int         `json:"day_of_week"`
	Slots     []SlotUsage `json:"slots"`
}

type Resolver struct {
	repo domain.Repository
	loc  *time.Location
}

func NewResolver(repo domain.Repository, loc *time.Location) *Resolver {
	return &Resolver{repo: repo, loc: loc}
}

// SlotsForDate merges templates, overrides and the quick adjustment
// into the effective slots of a date. Overrides are absolute: they
// replace the template value for every window they touch. The quick
// adjustment multiplies whatever survives, rounding down, floor 0.
func (r *Resolver) SlotsForDate(ctx context.Context, date time.Time) ([]Slot, error) {
	day := timezone.Midnight(date, r.loc)

	templates, err := r.repo.TemplatesForDay(ctx, int(day.Weekday()))
	if err != nil {
		return nil, err
	}

	overrides, err := r.repo.OverridesForDate(ctx, day)
	if err != nil {
		return nil, err
	}

	adj, err := r.repo.QuickAdjustmentForDate(ctx, day)
	if err != nil {
		return nil, err
	}

	byStart := make(map[string]models.SlotOverride, len(overrides))
	var fullDay *models.SlotOverride
	for i := range overrides {
		ov := overrides[i]
		if ov.StartTime == "" {
			fullDay = &overrides[i]
			continue
		}
		byStart[ov.StartTime] = ov
	}

	multiplier := 1.0
	if adj != nil {
		multiplier = Level(adj.Level).Multiplier()
	}

	slots := make([]Slot, 0, len(templates))
	for _, tpl := range templates {
		slot := Slot{
			TemplateID: tpl.ID,
			StartTime:  tpl.StartTime,
			EndTime:    tpl.EndTime,
			MaxPoints:  tpl.MaxPoints,
		}

		if ov, ok := byStart[tpl.StartTime]; ok {
			slot.MaxPoints = ov.MaxPoints
			slot.IsOverride = true
			slot.Reason = ov.Reason
			if ov.EndTime != "" {
				slot.EndTime = ov.EndTime
			}
		} else if fullDay != nil {
			slot.MaxPoints = fullDay.MaxPoints
			slot.IsOverride = true
			slot.Reason = fullDay.Reason
		}

		if adj != nil {
			slot.MaxPoints = scalePoints(slot.MaxPoints, multiplier)
			slot.Adjusted = true
		}

		slots = append(slots, slot)
	}

	return slots, nil
}

// Window converts a slot's HH:MM bounds on a date to UTC instants.
func (r *Resolver) Window(date time.Time, slot Slot) (time.Time, time.Time) {
	start := timezone.At(date, slot.StartTime, r.loc)
	end := timezone.At(date, slot.EndTime, r.loc)
	return start.UTC(), end.UTC()
}

// Usage attaches booked points to a slot. Half-open overlap against
// non-cancelled appointments only.
func (r *Resolver) Usage(
	ctx context.Context,
	date time.Time,
	slot Slot,
	excludeID uint,
) (SlotUsage, error) {

	start, end := r.Window(date, slot)
	used, err := r.repo.ActivePointsOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return SlotUsage{}, err
	}

	available := slot.MaxPoints - used
	usage := SlotUsage{
		Slot:       slot,
		UsedPoints: used,
	}
	if available < 0 {
		usage.OverCapacity = true
		available = 0
	}
	usage.AvailablePoints = available
	return usage, nil
}

// Resolve returns effective capacity and usage for one window. A
// window with no matching template does not exist: capacity 0.
func (r *Resolver) Resolve(
	ctx context.Context,
	date time.Time,
	startTime string,
	endTime string,
) (SlotUsage, error) {

	slots, err := r.SlotsForDate(ctx, date)
	if err != nil {
		return SlotUsage{}, err
	}

	for _, slot := range slots {
		if slot.StartTime == startTime && (endTime == "" || slot.EndTime == endTime) {
			return r.Usage(ctx, date, slot, 0)
		}
	}

	return SlotUsage{
		Slot: Slot{StartTime: startTime, EndTime: endTime},
	}, nil
}

// SlotsTouching returns the slots whose window overlaps [startUTC,
// endUTC) on the booking's local date.
func (r *Resolver) SlotsTouching(
	ctx context.Context,
	date time.Time,
	startUTC time.Time,
	endUTC time.Time,
) ([]Slot, error) {

	slots, err := r.SlotsForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	var touched []Slot
	for _, slot := range slots {
		ws, we := r.Window(date, slot)
		if ws.Before(endUTC) && we.After(startUTC) {
			touched = append(touched, slot)
		}
	}
	return touched, nil
}

// SlotForTime finds the window containing a local clock time.
func (r *Resolver) SlotForTime(ctx context.Context, t time.Time) (*Slot, error) {
	slots, err := r.SlotsForDate(ctx, t)
	if err != nil {
		return nil, err
	}

	for i, slot := range slots {
		ws, we := r.Window(t, slot)
		utc := t.UTC()
		if !utc.Before(ws) && utc.Before(we) {
			return &slots[i], nil
		}
	}
	return nil, nil
}

// Week resolves a 7-day window anchored on date.
func (r *Resolver) Week(ctx context.Context, anchor time.Time) ([]DaySlots, error) {
	out := make([]DaySlots, 0, 7)

	day := timezone.Midnight(anchor, r.loc)
	for i := 0; i < 7; i++ {
		slots, err := r.SlotsForDate(ctx, day)
		if err != nil {
			return nil, err
		}

		usages := make([]SlotUsage, 0, len(slots))
		for _, slot := range slots {
			usage, err := r.Usage(ctx, day, slot, 0)
			if err != nil {
				return nil, err
			}
			usages = append(usages, usage)
		}

		out = append(out, DaySlots{
			Date:      timezone.DateStr(day, r.loc),
			DayOfWeek: int(day.Weekday()),
			Slots:     usages,
		})

		// DST-safe: jump past the boundary then snap back to midnight
		day = timezone.Midnight(day.Add(25*time.Hour), r.loc)
	}

	return out, nil
}

func scalePoints(points int, multiplier float64) int {
	scaled := int(float64(points) * multiplier)
	if scaled < 0 {
		return 0
	}
	return scaled
}
