package booking

import (
	"context"
	"time"

	"github.com/dockwise/scheduler/internal/audit"
	"github.com/dockwise/scheduler/internal/capacity"
	"github.com/dockwise/scheduler/internal/datelock"
	"github.com/dockwise/scheduler/internal/dock"
	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
	"github.com/dockwise/scheduler/internal/rules"
	"github.com/dockwise/scheduler/internal/timezone"
)

type RescheduleInput struct {
	AppointmentID uint

	Date      string
	StartTime string

	ActorID *uint
}

// Reschedule moves a pending appointment to a new slot. Duration, size
// and points are kept; the capacity and dock checks run as if it were
// a fresh booking, with the appointment's own usage excluded.
type Reschedule struct {
	repo   domain.Repository
	rules  *rules.Store
	locker datelock.Locker
	audit  *audit.Dispatcher
	loc    *time.Location
}

func NewReschedule(
	repo domain.Repository,
	ruleStore *rules.Store,
	locker datelock.Locker,
	auditor *audit.Dispatcher,
	loc *time.Location,
) *Reschedule {
	return &Reschedule{
		repo:   repo,
		rules:  ruleStore,
		locker: locker,
		audit:  auditor,
		loc:    loc,
	}
}

func (uc *Reschedule) Execute(ctx context.Context, in RescheduleInput) (*models.Appointment, error) {
	date, err := time.ParseInLocation("2006-01-02", in.Date, uc.loc)
	if err != nil {
		return nil, &httperr.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	if _, err := time.Parse("15:04", in.StartTime); err != nil {
		return nil, &httperr.ValidationError{Field: "start_time", Reason: "expected HH:MM"}
	}
	start := timezone.At(date, in.StartTime, uc.loc)
	startUTC := start.UTC()

	r := uc.rules.Current(ctx)

	var ap *models.Appointment
	err = uc.locker.WithLock(ctx, in.Date, func() error {
		return uc.repo.Transact(ctx, func(tx domain.Repository) error {
			ap, err = tx.GetAppointment(ctx, in.AppointmentID)
			if err != nil {
				return httperr.ErrBusiness("appointment_not_found")
			}
			if domain.Status(ap.Status) != domain.StatusPending {
				return &httperr.InvalidStateTransitionError{
					From: ap.Status,
					To:   string(domain.StatusPending),
				}
			}

			duration := ap.EndUTC.Sub(ap.StartUTC)
			endUTC := startUTC.Add(duration)

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

			for _, slot := range slots {
				usage, err := resolver.Usage(ctx, date, slot, ap.ID)
				if err != nil {
					return err
				}
				if usage.AvailablePoints < ap.PointsUsed {
					return &httperr.CapacityConflictError{
						SlotDate:      in.Date,
						SlotStartTime: slot.StartTime,
						SlotEndTime:   slot.EndTime,
						MaxPoints:     slot.MaxPoints,
						PointsUsed:    usage.UsedPoints,
						PointsNeeded:  ap.PointsUsed,
					}
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
				Size:           domain.Size(ap.Size),
				ExcludeID:      ap.ID,
				Rules:          r,
			})
			if err != nil {
				return err
			}

			ap.StartUTC = assigned.Start
			ap.EndUTC = assigned.End
			ap.SlotDate = timezone.Midnight(date, uc.loc)
			ap.SlotStartTime = primary.StartTime
			ap.DockID = &assigned.DockID
			return tx.UpdateAppointment(ctx, ap)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   in.ActorID,
		Action:   "appointment_rescheduled",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})
	return ap, nil
}
