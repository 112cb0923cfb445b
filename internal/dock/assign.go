package dock

import (
	"context"
	"sort"
	"time"

	"github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/rules"
)

// shiftStep is the granularity of the forward search when the requested
// start collides with an occupied dock.
const shiftStep = 15 * time.Minute

type Request struct {
	Date           time.Time
	SlotTemplateID uint
	SlotStartTime  string

	// Requested occupation window in UTC.
	Start time.Time
	End   time.Time

	// SlotEnd caps the forward shift: a shifted appointment must still
	// finish inside its slot.
	SlotEnd time.Time

	Size      appointment.Size
	ExcludeID uint
	Rules     rules.Rules
}

type Result struct {
	DockID   uint
	DockCode string
	Start    time.Time
	End      time.Time
	Shifted  bool
}

// Assigner picks a dock for a booking. Preference order is the
// configured size pairing first, then least recently used; when every
// dock is busy at the requested time the search slides forward in
// fixed steps until the slot window runs out.
type Assigner struct {
	repo appointment.Repository
}

func NewAssigner(repo appointment.Repository) *Assigner {
	return &Assigner{repo: repo}
}

func (a *Assigner) Assign(ctx context.Context, req Request) (*Result, error) {
	candidates, err := a.candidates(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, &httperr.NoDockAvailableError{
			Date:          req.Date.Format("2006-01-02"),
			SlotStartTime: req.SlotStartTime,
		}
	}

	duration := req.End.Sub(req.Start)
	buffer := time.Duration(0)
	if req.Rules.DockBuffer.Enabled {
		buffer = time.Duration(req.Rules.DockBuffer.Minutes) * time.Minute
	}

	for start := req.Start; ; start = start.Add(shiftStep) {
		end := start.Add(duration)
		if end.After(req.SlotEnd) {
			break
		}

		ok, err := a.withinSimultaneousLimit(ctx, req, start, end)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		for _, d := range candidates {
			n, err := a.repo.CountDockAppointmentsOverlapping(
				ctx, d.id, start.Add(-buffer), end.Add(buffer), req.ExcludeID,
			)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				continue
			}
			return &Result{
				DockID:   d.id,
				DockCode: d.code,
				Start:    start,
				End:      end,
				Shifted:  !start.Equal(req.Start),
			}, nil
		}
	}

	return nil, &httperr.NoDockAvailableError{
		Date:          req.Date.Format("2006-01-02"),
		SlotStartTime: req.SlotStartTime,
	}
}

func (a *Assigner) withinSimultaneousLimit(
	ctx context.Context,
	req Request,
	start, end time.Time,
) (bool, error) {
	if !req.Rules.MaxSimultaneous.Enabled {
		return true, nil
	}
	n, err := a.repo.CountActiveBetween(ctx, start, end)
	if err != nil {
		return false, err
	}
	return n < req.Rules.MaxSimultaneous.Count, nil
}

type candidate struct {
	id      uint
	code    string
	lastUse time.Time
}

// candidates returns the docks usable for this request, already sorted
// by preference.
func (a *Assigner) candidates(ctx context.Context, req Request) ([]candidate, error) {
	docks, err := a.repo.ListActiveDocks(ctx)
	if err != nil {
		return nil, err
	}

	// Template availability rows: absence means available.
	blocked := map[uint]bool{}
	if req.SlotTemplateID != 0 {
		avail, err := a.repo.DockAvailabilityForTemplate(ctx, req.SlotTemplateID)
		if err != nil {
			return nil, err
		}
		for _, row := range avail {
			if !row.IsActive {
				blocked[row.DockID] = true
			}
		}
	}

	// Date overrides win over template availability.
	overrides, err := a.repo.DockOverridesForDate(ctx, req.Date)
	if err != nil {
		return nil, err
	}
	for _, ov := range overrides {
		if ov.IsActive {
			delete(blocked, ov.DockID)
		} else {
			blocked[ov.DockID] = true
		}
	}

	lastUse, err := a.repo.LastDockUse(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]candidate, 0, len(docks))
	for _, d := range docks {
		if blocked[d.ID] {
			continue
		}
		out = append(out, candidate{id: d.ID, code: d.Code, lastUse: lastUse[d.ID]})
	}

	preferred := ""
	if req.Rules.DockDistribution.Enabled {
		switch req.Size {
		case appointment.SizeLarge:
			preferred = req.Rules.DockDistribution.LargePreferred
		case appointment.SizeSmall:
			preferred = req.Rules.DockDistribution.SmallPreferred
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if preferred != "" {
			if out[i].code == preferred && out[j].code != preferred {
				return true
			}
			if out[j].code == preferred && out[i].code != preferred {
				return false
			}
		}
		// Least recently used first; a dock never used sorts ahead.
		if !out[i].lastUse.Equal(out[j].lastUse) {
			return out[i].lastUse.Before(out[j].lastUse)
		}
		return out[i].code < out[j].code
	})

	return out, nil
}
