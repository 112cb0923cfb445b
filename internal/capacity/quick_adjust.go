package capacity

import (
	"context"
	"time"

	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/timezone"
)

type Level string

const (
	LevelNormal       Level = "normal"
	LevelSlightlyLess Level = "slightly_less"
	LevelMuchLess     Level = "much_less"
	LevelMinimum      Level = "minimum"
	LevelSlightlyMore Level = "slightly_more"
)

// ParseLevel accepts "reset" as an alias for normal; the engine itself
// knows only the explicit levels.
func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelNormal, LevelSlightlyLess, LevelMuchLess, LevelMinimum, LevelSlightlyMore:
		return Level(s), true
	}
	if s == "reset" {
		return LevelNormal, true
	}
	return "", false
}

func (l Level) Multiplier() float64 {
	switch l {
	case LevelSlightlyLess:
		return 0.75
	case LevelMuchLess:
		return 0.50
	case LevelMinimum:
		return 0.25
	case LevelSlightlyMore:
		return 1.25
	}
	return 1.0
}

type SlotDelta struct {
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	OriginalPoints int    `json:"original_points"`
	NewPoints      int    `json:"new_points"`
}

type Adjustment struct {
	Date          string      `json:"date"`
	Level         Level       `json:"level"`
	AdjustedSlots []SlotDelta `json:"adjusted_slots"`
}

// QuickAdjuster applies day-scoped capacity scaling. It owns only the
// QuickAdjustment record; bookings keep reading capacity through the
// resolver, and existing appointments are never touched.
type QuickAdjuster struct {
	repo     domain.Repository
	resolver *Resolver
	loc      *time.Location
}

func NewQuickAdjuster(repo domain.Repository, resolver *Resolver, loc *time.Location) *QuickAdjuster {
	return &QuickAdjuster{repo: repo, resolver: resolver, loc: loc}
}

// Apply sets or clears the adjustment for a date and reports the
// per-slot point delta so callers can display the effect.
func (q *QuickAdjuster) Apply(
	ctx context.Context,
	date time.Time,
	level Level,
) (*Adjustment, error) {

	day := timezone.Midnight(date, q.loc)

	// Effective slots before this change, with any previous adjustment
	// stripped: the delta is always reported against the unadjusted
	// capacity.
	if err := q.repo.ClearQuickAdjustment(ctx, day); err != nil {
		return nil, err
	}

	baseline, err := q.resolver.SlotsForDate(ctx, day)
	if err != nil {
		return nil, err
	}
	if len(baseline) == 0 {
		return nil, httperr.ErrBusiness("no_slots_configured")
	}

	if level != LevelNormal {
		if err := q.repo.SetQuickAdjustment(ctx, day, string(level)); err != nil {
			return nil, err
		}
	}

	multiplier := level.Multiplier()
	deltas := make([]SlotDelta, 0, len(baseline))
	for _, slot := range baseline {
		deltas = append(deltas, SlotDelta{
			StartTime:      slot.StartTime,
			EndTime:        slot.EndTime,
			OriginalPoints: slot.MaxPoints,
			NewPoints:      scalePoints(slot.MaxPoints, multiplier),
		})
	}

	return &Adjustment{
		Date:          timezone.DateStr(day, q.loc),
		Level:         level,
		AdjustedSlots: deltas,
	}, nil
}

// Current returns the active level for a date, normal when none.
func (q *QuickAdjuster) Current(ctx context.Context, date time.Time) (Level, error) {
	day := timezone.Midnight(date, q.loc)
	adj, err := q.repo.QuickAdjustmentForDate(ctx, day)
	if err != nil {
		return LevelNormal, err
	}
	if adj == nil {
		return LevelNormal, nil
	}
	if level, ok := ParseLevel(adj.Level); ok {
		return level, nil
	}
	return LevelNormal, nil
}
