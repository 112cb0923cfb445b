package appointment

import (
	"math"
	"time"

	"github.com/dockwise/scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time, reason string) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	ap.CancellationReason = reason
	return nil
}

func Reactivate(ap *models.Appointment) error {
	if err := CanReactivate(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusPending)
	ap.CancelledAt = nil
	ap.CancellationReason = ""
	return nil
}

func CheckIn(ap *models.Appointment, now time.Time, by string) error {
	if err := CanCheckIn(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusInProgress)
	ap.ActualStartUTC = &now
	ap.CheckedInBy = by
	return nil
}

func CheckOut(ap *models.Appointment, now time.Time, actualUnits *int) error {
	if err := CanCheckOut(Status(ap.Status)); err != nil {
		return err
	}

	durationMin := now.Sub(*ap.ActualStartUTC).Minutes()
	errorMin := round2(durationMin - float64(ap.WorkMinutesNeeded))
	durationMin = round2(durationMin)

	ap.Status = string(StatusCompleted)
	ap.ActualEndUTC = &now
	ap.ActualDurationMin = &durationMin
	ap.PredictionErrorMin = &errorMin
	if actualUnits != nil {
		ap.Units = actualUnits
	}
	return nil
}

// UndoCheckIn clears both actual timestamps. Privileged correction;
// the appointment returns to pending regardless of how far it got.
func UndoCheckIn(ap *models.Appointment) error {
	if err := CanUndoCheckIn(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusPending)
	ap.ActualStartUTC = nil
	ap.ActualEndUTC = nil
	ap.ActualDurationMin = nil
	ap.PredictionErrorMin = nil
	ap.CheckedInBy = ""
	return nil
}

// Active reports whether the appointment still consumes slot capacity.
func Active(ap *models.Appointment) bool {
	return ap.Status != string(StatusCancelled)
}

// Overlaps tests the half-open interval [StartUTC, EndUTC) against
// [start, end).
func Overlaps(ap *models.Appointment, start, end time.Time) bool {
	return ap.StartUTC.Before(end) && ap.EndUTC.After(start)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
