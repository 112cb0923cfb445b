package booking

import (
	"context"
	"time"

	"github.com/dockwise/scheduler/internal/audit"
	"github.com/dockwise/scheduler/internal/capacity"
	"github.com/dockwise/scheduler/internal/datelock"
	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
	"github.com/dockwise/scheduler/internal/timezone"
)

// Reactivate restores a cancelled appointment. The slot may have been
// rebooked in the meantime, so capacity is validated again before the
// points are re-consumed.
type Reactivate struct {
	repo   domain.Repository
	locker datelock.Locker
	audit  *audit.Dispatcher
	loc    *time.Location
}

func NewReactivate(
	repo domain.Repository,
	locker datelock.Locker,
	auditor *audit.Dispatcher,
	loc *time.Location,
) *Reactivate {
	return &Reactivate{repo: repo, locker: locker, audit: auditor, loc: loc}
}

func (uc *Reactivate) Execute(ctx context.Context, id uint, actorID *uint) (*models.Appointment, error) {
	var ap *models.Appointment

	first, err := uc.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	dateKey := timezone.DateStr(first.SlotDate, uc.loc)

	err = uc.locker.WithLock(ctx, dateKey, func() error {
		return uc.repo.Transact(ctx, func(tx domain.Repository) error {
			ap, err = tx.GetAppointment(ctx, id)
			if err != nil {
				return httperr.ErrBusiness("appointment_not_found")
			}

			resolver := capacity.NewResolver(tx, uc.loc)
			slots, err := resolver.SlotsTouching(ctx, ap.SlotDate, ap.StartUTC, ap.EndUTC)
			if err != nil {
				return err
			}
			for _, slot := range slots {
				usage, err := resolver.Usage(ctx, ap.SlotDate, slot, ap.ID)
				if err != nil {
					return err
				}
				if usage.AvailablePoints < ap.PointsUsed {
					return &httperr.CapacityConflictError{
						SlotDate:      dateKey,
						SlotStartTime: slot.StartTime,
						SlotEndTime:   slot.EndTime,
						MaxPoints:     slot.MaxPoints,
						PointsUsed:    usage.UsedPoints,
						PointsNeeded:  ap.PointsUsed,
					}
				}
			}

			if err := domain.Reactivate(ap); err != nil {
				return err
			}
			return tx.UpdateAppointment(ctx, ap)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   "appointment_reactivated",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})
	return ap, nil
}
