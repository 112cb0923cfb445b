package booking

import (
	"context"
	"time"

	"github.com/dockwise/scheduler/internal/audit"
	"github.com/dockwise/scheduler/internal/datelock"
	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
	"github.com/dockwise/scheduler/internal/timezone"
)

type Cancel struct {
	repo   domain.Repository
	locker datelock.Locker
	audit  *audit.Dispatcher
	loc    *time.Location
}

func NewCancel(
	repo domain.Repository,
	locker datelock.Locker,
	auditor *audit.Dispatcher,
	loc *time.Location,
) *Cancel {
	return &Cancel{repo: repo, locker: locker, audit: auditor, loc: loc}
}

// Execute cancels an appointment, immediately releasing its slot
// points and dock reservation.
func (uc *Cancel) Execute(
	ctx context.Context,
	id uint,
	reason string,
	actorID *uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	dateKey := timezone.DateStr(ap.SlotDate, uc.loc)
	err = uc.locker.WithLock(ctx, dateKey, func() error {
		if err := domain.Cancel(ap, time.Now().UTC(), reason); err != nil {
			return err
		}
		return uc.repo.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   "appointment_cancelled",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})
	return ap, nil
}
