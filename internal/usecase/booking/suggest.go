package booking

import (
	"context"
	"sort"
	"time"

	"github.com/dockwise/scheduler/internal/capacity"
	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/rules"
	"github.com/dockwise/scheduler/internal/timezone"
)

const maxSuggestDays = 30

type SuggestInput struct {
	FromDate string
	Days     int

	// Capacity the new booking would consume.
	Points int
	Size   domain.Size
}

type Suggestion struct {
	Date string             `json:"date"`
	Slot capacity.SlotUsage `json:"slot"`

	// Preferred slots for the delivery size rank first.
	Preferred bool `json:"preferred"`
}

// Suggest lists slots that can absorb a booking, scanning forward from
// a date. Within a day the size-preferred windows come first, then the
// ones with the most room.
type Suggest struct {
	repo  domain.Repository
	rules *rules.Store
	loc   *time.Location
}

func NewSuggest(repo domain.Repository, ruleStore *rules.Store, loc *time.Location) *Suggest {
	return &Suggest{repo: repo, rules: ruleStore, loc: loc}
}

func (uc *Suggest) Execute(ctx context.Context, in SuggestInput) ([]Suggestion, error) {
	from, err := time.ParseInLocation("2006-01-02", in.FromDate, uc.loc)
	if err != nil {
		return nil, &httperr.ValidationError{Field: "from_date", Reason: "expected YYYY-MM-DD"}
	}
	if in.Points <= 0 {
		return nil, &httperr.ValidationError{Field: "points", Reason: "must be positive"}
	}

	days := in.Days
	if days <= 0 {
		days = 7
	}
	if days > maxSuggestDays {
		days = maxSuggestDays
	}

	r := uc.rules.Current(ctx)
	resolver := capacity.NewResolver(uc.repo, uc.loc)

	var out []Suggestion
	day := timezone.Midnight(from, uc.loc)
	for i := 0; i < days; i++ {
		slots, err := resolver.SlotsForDate(ctx, day)
		if err != nil {
			return nil, err
		}

		var daily []Suggestion
		for _, slot := range slots {
			usage, err := resolver.Usage(ctx, day, slot, 0)
			if err != nil {
				return nil, err
			}
			if usage.AvailablePoints < in.Points {
				continue
			}
			daily = append(daily, Suggestion{
				Date:      timezone.DateStr(day, uc.loc),
				Slot:      usage,
				Preferred: uc.preferred(r, in.Size, slot.StartTime),
			})
		}

		sort.SliceStable(daily, func(a, b int) bool {
			if daily[a].Preferred != daily[b].Preferred {
				return daily[a].Preferred
			}
			if daily[a].Slot.AvailablePoints != daily[b].Slot.AvailablePoints {
				return daily[a].Slot.AvailablePoints > daily[b].Slot.AvailablePoints
			}
			return daily[a].Slot.StartTime < daily[b].Slot.StartTime
		})

		out = append(out, daily...)
		day = timezone.Midnight(day.Add(25*time.Hour), uc.loc)
	}

	return out, nil
}

// NextFree returns the earliest slot that fits, or nil when the whole
// scan window is full.
func (uc *Suggest) NextFree(ctx context.Context, in SuggestInput) (*Suggestion, error) {
	all, err := uc.Execute(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return &all[0], nil
}

func (uc *Suggest) preferred(r rules.Rules, size domain.Size, startTime string) bool {
	if !r.SizePriority.Enabled {
		return false
	}
	switch size {
	case domain.SizeLarge:
		return containsStr(r.SizePriority.LargeSlots, startTime)
	case domain.SizeSmall:
		return containsStr(r.SizePriority.SmallSlots, startTime)
	}
	return false
}
