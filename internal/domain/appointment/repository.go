package appointment

import (
	"context"
	"time"

	"github.com/dockwise/scheduler/internal/models"
)

type Repository interface {
	// -------- Slot templates / overrides --------
	TemplatesForDay(
		ctx context.Context,
		dayOfWeek int,
	) ([]models.SlotTemplate, error)

	OverridesForDate(
		ctx context.Context,
		date time.Time,
	) ([]models.SlotOverride, error)

	QuickAdjustmentForDate(
		ctx context.Context,
		date time.Time,
	) (*models.QuickAdjustment, error)

	SetQuickAdjustment(
		ctx context.Context,
		date time.Time,
		level string,
	) error

	ClearQuickAdjustment(
		ctx context.Context,
		date time.Time,
	) error

	// -------- Appointments --------
	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	GetAppointmentByToken(
		ctx context.Context,
		token string,
	) (*models.Appointment, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// UpdateAppointmentVersioned applies an optimistic version check;
	// returns a conflict error when the row changed underneath.
	UpdateAppointmentVersioned(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListAppointments(
		ctx context.Context,
		from time.Time,
		to time.Time,
		providerID *uint,
	) ([]models.Appointment, error)

	// ActiveAppointmentsOverlapping returns non-cancelled appointments
	// whose [StartUTC, EndUTC) overlaps [start, end), excluding the
	// given id when non-zero.
	ActiveAppointmentsOverlapping(
		ctx context.Context,
		start time.Time,
		end time.Time,
		excludeID uint,
	) ([]models.Appointment, error)

	ActivePointsOverlapping(
		ctx context.Context,
		start time.Time,
		end time.Time,
		excludeID uint,
	) (int, error)

	CountActiveBetween(
		ctx context.Context,
		start time.Time,
		end time.Time,
	) (int, error)

	CompletedForCategory(
		ctx context.Context,
		category string,
	) ([]models.Appointment, error)

	// -------- Docks --------
	ListActiveDocks(ctx context.Context) ([]models.Dock, error)

	DockAvailabilityForTemplate(
		ctx context.Context,
		slotTemplateID uint,
	) ([]models.DockAvailability, error)

	DockOverridesForDate(
		ctx context.Context,
		date time.Time,
	) ([]models.DockOverride, error)

	// LastDockUse maps dock id to the end time of its most recent
	// non-cancelled appointment, for least-recently-used selection.
	LastDockUse(ctx context.Context) (map[uint]time.Time, error)

	CountDockAppointmentsOverlapping(
		ctx context.Context,
		dockID uint,
		start time.Time,
		end time.Time,
		excludeID uint,
	) (int, error)

	// -------- Calibration --------
	GetCoefficientSet(
		ctx context.Context,
		category string,
	) (*models.CoefficientSet, error)

	UpsertCoefficientSet(
		ctx context.Context,
		set *models.CoefficientSet,
	) error

	CreateCalibrationRecord(
		ctx context.Context,
		rec *models.CalibrationRecord,
	) error

	GetCalibrationRecord(
		ctx context.Context,
		id uint,
	) (*models.CalibrationRecord, error)

	UpdateCalibrationRecord(
		ctx context.Context,
		rec *models.CalibrationRecord,
	) error

	// -------- Config --------
	ConfigValues(
		ctx context.Context,
		keys []string,
	) (map[string]string, error)

	SetConfigValue(
		ctx context.Context,
		key string,
		value string,
	) error

	// -------- Transactions --------
	// Transact runs fn against a transactional view of the repository;
	// a booking either commits entirely or not at all.
	Transact(
		ctx context.Context,
		fn func(Repository) error,
	) error
}
