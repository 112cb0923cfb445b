package httperr

import (
	"errors"
	"fmt"
)

// Typed engine errors. Handlers map these onto HTTP responses; nothing
// below the handler layer knows about status codes.

// CapacityConflictError is returned when a slot cannot absorb the
// requested points at commit time. It carries the slot's usage so the
// caller can render alternatives.
type CapacityConflictError struct {
	SlotDate      string `json:"slot_date"`
	SlotStartTime string `json:"slot_start_time"`
	SlotEndTime   string `json:"slot_end_time"`
	MaxPoints     int    `json:"max_points"`
	PointsUsed    int    `json:"points_used"`
	PointsNeeded  int    `json:"points_needed"`
}

func (e *CapacityConflictError) Error() string {
	return fmt.Sprintf(
		"slot %s %s full: %d/%d points used, %d needed",
		e.SlotDate, e.SlotStartTime, e.PointsUsed, e.MaxPoints, e.PointsNeeded,
	)
}

type NoDockAvailableError struct {
	Date          string `json:"date"`
	SlotStartTime string `json:"slot_start_time"`
}

func (e *NoDockAvailableError) Error() string {
	return fmt.Sprintf("no dock available on %s at %s", e.Date, e.SlotStartTime)
}

type InvalidStateTransitionError struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition %s -> %s", e.From, e.To)
}

type InsufficientSampleError struct {
	Category   string `json:"category"`
	SampleSize int    `json:"sample_size"`
	Minimum    int    `json:"minimum"`
}

func (e *InsufficientSampleError) Error() string {
	return fmt.Sprintf(
		"insufficient sample for %q: %d (minimum %d)",
		e.Category, e.SampleSize, e.Minimum,
	)
}

type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type TimeoutError struct {
	Op string `json:"op"`
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out", e.Op)
}

func IsCapacityConflict(err error) bool {
	var e *CapacityConflictError
	return errors.As(err, &e)
}

func IsNoDockAvailable(err error) bool {
	var e *NoDockAvailableError
	return errors.As(err, &e)
}

func IsInvalidStateTransition(err error) bool {
	var e *InvalidStateTransitionError
	return errors.As(err, &e)
}
