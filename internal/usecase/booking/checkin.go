package booking

import (
	"context"
	"time"

	"github.com/dockwise/scheduler/internal/audit"
	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
)

// GateActions covers the dock-gate lifecycle: check-in when the truck
// arrives, check-out when unloading ends, and the privileged undo.
// Each write goes through the versioned update so two gate terminals
// hitting the same appointment cannot both win.
type GateActions struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewGateActions(repo domain.Repository, auditor *audit.Dispatcher) *GateActions {
	return &GateActions{repo: repo, audit: auditor}
}

func (uc *GateActions) CheckIn(
	ctx context.Context,
	id uint,
	by string,
	actorID *uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := domain.CheckIn(ap, time.Now().UTC(), by); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateAppointmentVersioned(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   "appointment_checked_in",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})
	return ap, nil
}

// CheckOut completes the appointment, recording actual duration and
// the signed prediction error used later for calibration.
func (uc *GateActions) CheckOut(
	ctx context.Context,
	id uint,
	actualUnits *int,
	actorID *uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := domain.CheckOut(ap, time.Now().UTC(), actualUnits); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateAppointmentVersioned(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   "appointment_checked_out",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})
	return ap, nil
}

func (uc *GateActions) UndoCheckIn(
	ctx context.Context,
	id uint,
	actorID *uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := domain.UndoCheckIn(ap); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateAppointmentVersioned(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   "appointment_check_in_undone",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})
	return ap, nil
}

// Confirm marks an appointment as confirmed by its provider via the
// emailed token. Idempotent: confirming twice keeps the first stamp.
func (uc *GateActions) Confirm(ctx context.Context, token string) (*models.Appointment, error) {
	ap, err := uc.repo.GetAppointmentByToken(ctx, token)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	if domain.Status(ap.Status) == domain.StatusCancelled {
		return nil, httperr.ErrBusiness("appointment_cancelled")
	}
	if ap.ConfirmedAt != nil {
		return ap, nil
	}

	now := time.Now().UTC()
	ap.ConfirmedAt = &now
	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_confirmed",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})
	return ap, nil
}
