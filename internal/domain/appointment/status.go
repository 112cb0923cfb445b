package appointment

import "github.com/dockwise/scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ===============================
// Transition guards
// ===============================

// Each transition is legal from exactly one source state.

func CanCheckIn(current Status) error {
	if current != StatusPending {
		return &httperr.InvalidStateTransitionError{
			From: string(current), To: string(StatusInProgress),
		}
	}
	return nil
}

func CanCheckOut(current Status) error {
	if current != StatusInProgress {
		return &httperr.InvalidStateTransitionError{
			From: string(current), To: string(StatusCompleted),
		}
	}
	return nil
}

func CanUndoCheckIn(current Status) error {
	if current != StatusInProgress && current != StatusCompleted {
		return &httperr.InvalidStateTransitionError{
			From: string(current), To: string(StatusPending),
		}
	}
	return nil
}

func CanCancel(current Status) error {
	if current != StatusPending && current != StatusInProgress {
		return &httperr.InvalidStateTransitionError{
			From: string(current), To: string(StatusCancelled),
		}
	}
	return nil
}

func CanReactivate(current Status) error {
	if current != StatusCancelled {
		return &httperr.InvalidStateTransitionError{
			From: string(current), To: string(StatusPending),
		}
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}
