package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dockwise/scheduler/internal/audit"
	"github.com/dockwise/scheduler/internal/capacity"
	"github.com/dockwise/scheduler/internal/datelock"
	"github.com/dockwise/scheduler/internal/dock"
	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/estimator"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
	"github.com/dockwise/scheduler/internal/rules"
	"github.com/dockwise/scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type BookInput struct {
	ProviderID   *uint
	ProviderName string

	Date      string // YYYY-MM-DD, warehouse local
	StartTime string // HH:MM

	GoodsType          string
	Units              *int
	Lines              *int
	DeliveryNotesCount *int

	// When set, skips estimation entirely.
	WorkMinutesNeeded *int

	ForkliftsNeeded int
	ActorID         *uint
}

type BookResult struct {
	Appointment *models.Appointment
	Warnings    []string
}

// ======================================================
// USE CASE
// ======================================================

type Book struct {
	repo   domain.Repository
	est    *estimator.Estimator
	rules  *rules.Store
	locker datelock.Locker
	audit  *audit.Dispatcher
	loc    *time.Location
}

func NewBook(
	repo domain.Repository,
	est *estimator.Estimator,
	ruleStore *rules.Store,
	locker datelock.Locker,
	auditor *audit.Dispatcher,
	loc *time.Location,
) *Book {
	return &Book{
		repo:   repo,
		est:    est,
		rules:  ruleStore,
		locker: locker,
		audit:  auditor,
		loc:    loc,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *Book) Execute(ctx context.Context, in BookInput) (*BookResult, error) {

	// --------------------------------------------------
	// 1. Date / time in warehouse local time
	// --------------------------------------------------
	date, err := time.ParseInLocation("2006-01-02", in.Date, uc.loc)
	if err != nil {
		return nil, &httperr.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	if in.ProviderName == "" {
		return nil, &httperr.ValidationError{Field: "provider_name", Reason: "required"}
	}

	if _, err := time.Parse("15:04", in.StartTime); err != nil {
		return nil, &httperr.ValidationError{Field: "start_time", Reason: "expected HH:MM"}
	}
	start := timezone.At(date, in.StartTime, uc.loc)
	startUTC := start.UTC()

	r := uc.rules.Current(ctx)

	// --------------------------------------------------
	// 2. Minimum lead time
	// --------------------------------------------------
	if r.MinLeadTime.Enabled {
		lead := time.Duration(r.MinLeadTime.Hours) * time.Hour
		if startUTC.Before(time.Now().Add(lead)) {
			return nil, httperr.ErrBusiness("insufficient_lead_time")
		}
	}

	// --------------------------------------------------
	// 3. Duration: explicit or estimated from the load
	// --------------------------------------------------
	resolved := estimator.ResolveEstimations(in.GoodsType, in.Units, in.Lines, in.DeliveryNotesCount)

	var minutes float64
	switch {
	case in.WorkMinutesNeeded != nil:
		if *in.WorkMinutesNeeded <= 0 {
			return nil, &httperr.ValidationError{Field: "work_minutes_needed", Reason: "must be positive"}
		}
		minutes = float64(*in.WorkMinutesNeeded)
	case in.Units != nil:
		minutes, err = uc.est.Estimate(
			ctx, in.GoodsType, *in.Units,
			deref(resolved.Lines), deref(resolved.DeliveryNotesCount),
		)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &httperr.ValidationError{Field: "units", Reason: "required when no explicit duration is given"}
	}

	size := domain.SizeForDuration(minutes)
	points := size.Points()
	endUTC := startUTC.Add(time.Duration(minutes * float64(time.Minute)))

	// --------------------------------------------------
	// 4. Book under the date lock, inside one transaction
	// --------------------------------------------------
	var (
		ap       *models.Appointment
		warnings []string
	)

	err = uc.locker.WithLock(ctx, in.Date, func() error {
		return uc.repo.Transact(ctx, func(tx domain.Repository) error {
			resolver := capacity.NewResolver(tx, uc.loc)

			slots, err := resolver.SlotsTouching(ctx, date, startUTC, endUTC)
			if err != nil {
				return err
			}
			if len(slots) == 0 {
				return &httperr.ValidationError{
					Field:  "start_time",
					Reason: "no slot covers the requested window",
				}
			}

			// Every touched window must absorb the full point cost.
			for _, slot := range slots {
				usage, err := resolver.Usage(ctx, date, slot, 0)
				if err != nil {
					return err
				}
				if usage.AvailablePoints < points || usage.OverCapacity {
					return &httperr.CapacityConflictError{
						SlotDate:      in.Date,
						SlotStartTime: slot.StartTime,
						SlotEndTime:   slot.EndTime,
						MaxPoints:     slot.MaxPoints,
						PointsUsed:    usage.UsedPoints,
						PointsNeeded:  points,
					}
				}
			}

			if r.AvoidConcurrency.Enabled {
				n, err := tx.CountActiveBetween(ctx, startUTC, endUTC)
				if err != nil {
					return err
				}
				if n > 0 {
					if r.AvoidConcurrency.Mode == "enforce" {
						return httperr.ErrBusiness("concurrent_appointment")
					}
					warnings = append(warnings, "overlaps an existing appointment")
				}
			}

			primary := slots[0]
			_, slotEnd := resolver.Window(date, slots[len(slots)-1])

			assigned, err := dock.NewAssigner(tx).Assign(ctx, dock.Request{
				Date:           date,
				SlotTemplateID: primary.TemplateID,
				SlotStartTime:  primary.StartTime,
				Start:          startUTC,
				End:            endUTC,
				SlotEnd:        slotEnd,
				Size:           size,
				Rules:          r,
			})
			if err != nil {
				return err
			}
			if assigned.Shifted {
				warnings = append(warnings, fmt.Sprintf(
					"shifted to %s to free a dock",
					assigned.Start.In(uc.loc).Format("15:04"),
				))
			}

			ap = &models.Appointment{
				ProviderID:         in.ProviderID,
				ProviderName:       in.ProviderName,
				StartUTC:           assigned.Start,
				EndUTC:             assigned.End,
				SlotDate:           timezone.Midnight(date, uc.loc),
				SlotStartTime:      primary.StartTime,
				WorkMinutesNeeded:  int(minutes),
				ForkliftsNeeded:    in.ForkliftsNeeded,
				GoodsType:          estimator.NormalizeCategory(in.GoodsType),
				Units:              in.Units,
				Lines:              resolved.Lines,
				DeliveryNotesCount: resolved.DeliveryNotesCount,
				EstimatedFields:    strings.Join(resolved.EstimatedFields, ","),
				Size:               string(size),
				PointsUsed:         points,
				DockID:             &assigned.DockID,
				Status:             string(domain.InitialStatus()),
				ConfirmationToken:  uuid.NewString(),
			}
			return tx.CreateAppointment(ctx, ap)
		})
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5. Advisory warnings (never block the booking)
	// --------------------------------------------------
	warnings = append(warnings, uc.advisories(ctx, r, date, ap)...)

	uc.audit.Dispatch(audit.Event{
		UserID:   in.ActorID,
		Action:   "appointment_booked",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return &BookResult{Appointment: ap, Warnings: warnings}, nil
}

func (uc *Book) advisories(
	ctx context.Context,
	r rules.Rules,
	date time.Time,
	ap *models.Appointment,
) []string {

	var out []string

	if r.DailyConcentration.Enabled {
		dayStart := timezone.Midnight(date, uc.loc).UTC()
		dayEnd := timezone.Midnight(date.Add(25*time.Hour), uc.loc).UTC()
		n, err := uc.repo.CountActiveBetween(ctx, dayStart, dayEnd)
		if err == nil && n >= r.DailyConcentration.Threshold {
			out = append(out, fmt.Sprintf(
				"%d appointments already on this date (threshold %d)",
				n, r.DailyConcentration.Threshold,
			))
		}
	}

	if r.SizePriority.Enabled {
		switch domain.Size(ap.Size) {
		case domain.SizeLarge:
			if !containsStr(r.SizePriority.LargeSlots, ap.SlotStartTime) {
				out = append(out, "large delivery outside the preferred morning slots")
			}
		case domain.SizeSmall:
			if !containsStr(r.SizePriority.SmallSlots, ap.SlotStartTime) {
				out = append(out, "small delivery outside the preferred afternoon slots")
			}
		}
	}

	if r.CategoryPreferredTime.Enabled && ap.GoodsType != "" {
		if want, ok := r.CategoryPreferredTime.Map[ap.GoodsType]; ok && want != ap.SlotStartTime {
			out = append(out, fmt.Sprintf("%s deliveries usually go in the %s slot", ap.GoodsType, want))
		}
	}

	return out
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func containsStr(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
