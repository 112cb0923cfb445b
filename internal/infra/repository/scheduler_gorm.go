package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
)

type SchedulerGormRepository struct {
	db *gorm.DB

	// Deadline applied to each repository call; 0 disables it.
	timeout time.Duration
}

func NewSchedulerGormRepository(db *gorm.DB, timeout time.Duration) *SchedulerGormRepository {
	return &SchedulerGormRepository{db: db, timeout: timeout}
}

// conn binds the per-operation deadline to a gorm session.
func (r *SchedulerGormRepository) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if r.timeout <= 0 {
		return r.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(ctx), cancel
}

// timeoutErr surfaces a deadline hit during a query as the engine's
// timeout error instead of a bare context error.
func timeoutErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &httperr.TimeoutError{Op: "database"}
	}
	return err
}

// --------------------------------------------------
// Slot templates / overrides
// --------------------------------------------------

func (r *SchedulerGormRepository) TemplatesForDay(
	ctx context.Context,
	dayOfWeek int,
) ([]models.SlotTemplate, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var templates []models.SlotTemplate
	if err := db.
		Where("day_of_week = ? AND active = ?", dayOfWeek, true).
		Order("start_time ASC").
		Find(&templates).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return templates, nil
}

func (r *SchedulerGormRepository) OverridesForDate(
	ctx context.Context,
	date time.Time,
) ([]models.SlotOverride, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var overrides []models.SlotOverride
	if err := db.
		Where(
			"(date <= ? AND (date_end IS NULL AND date = ? OR date_end >= ?))",
			date, date, date,
		).
		Order("start_time ASC").
		Find(&overrides).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return overrides, nil
}

func (r *SchedulerGormRepository) QuickAdjustmentForDate(
	ctx context.Context,
	date time.Time,
) (*models.QuickAdjustment, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var adj models.QuickAdjustment
	err := db.
		Where("date = ?", date).
		First(&adj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, timeoutErr(err)
	}
	return &adj, nil
}

func (r *SchedulerGormRepository) SetQuickAdjustment(
	ctx context.Context,
	date time.Time,
	level string,
) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	return timeoutErr(db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"level", "updated_at"}),
		}).
		Create(&models.QuickAdjustment{Date: date, Level: level}).Error)
}

func (r *SchedulerGormRepository) ClearQuickAdjustment(
	ctx context.Context,
	date time.Time,
) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	return timeoutErr(db.
		Where("date = ?", date).
		Delete(&models.QuickAdjustment{}).Error)
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (r *SchedulerGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var ap models.Appointment
	if err := db.
		Preload("Dock").
		First(&ap, id).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return &ap, nil
}

func (r *SchedulerGormRepository) GetAppointmentByToken(
	ctx context.Context,
	token string,
) (*models.Appointment, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var ap models.Appointment
	if err := db.
		Where("confirmation_token = ?", token).
		First(&ap).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return &ap, nil
}

func (r *SchedulerGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	return timeoutErr(db.Create(ap).Error)
}

func (r *SchedulerGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	return timeoutErr(db.Save(ap).Error)
}

func (r *SchedulerGormRepository) UpdateAppointmentVersioned(
	ctx context.Context,
	ap *models.Appointment,
) error {

	db, cancel := r.conn(ctx)
	defer cancel()

	current := ap.Version
	ap.Version = current + 1

	res := db.
		Model(&models.Appointment{}).
		Where("id = ? AND version = ?", ap.ID, current).
		Select("*").
		Omit("id", "created_at").
		Updates(ap)
	if res.Error != nil {
		return timeoutErr(res.Error)
	}
	if res.RowsAffected == 0 {
		ap.Version = current
		return httperr.ErrBusiness("appointment_modified_concurrently")
	}
	return nil
}

func (r *SchedulerGormRepository) ListAppointments(
	ctx context.Context,
	from time.Time,
	to time.Time,
	providerID *uint,
) ([]models.Appointment, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	q := db.
		Preload("Dock").
		Where("start_utc >= ? AND start_utc < ?", from, to)
	if providerID != nil {
		q = q.Where("provider_id = ?", *providerID)
	}

	var aps []models.Appointment
	if err := q.Order("start_utc ASC").Find(&aps).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return aps, nil
}

func (r *SchedulerGormRepository) ActiveAppointmentsOverlapping(
	ctx context.Context,
	start time.Time,
	end time.Time,
	excludeID uint,
) ([]models.Appointment, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	q := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"status <> 'cancelled' AND start_utc < ? AND end_utc > ?",
			end, start,
		)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var aps []models.Appointment
	if err := q.Find(&aps).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return aps, nil
}

func (r *SchedulerGormRepository) ActivePointsOverlapping(
	ctx context.Context,
	start time.Time,
	end time.Time,
	excludeID uint,
) (int, error) {

	aps, err := r.ActiveAppointmentsOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, ap := range aps {
		total += ap.PointsUsed
	}
	return total, nil
}

func (r *SchedulerGormRepository) CountActiveBetween(
	ctx context.Context,
	start time.Time,
	end time.Time,
) (int, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var count int64
	if err := db.
		Model(&models.Appointment{}).
		Where(
			"status <> 'cancelled' AND start_utc < ? AND end_utc > ?",
			end, start,
		).
		Count(&count).Error; err != nil {
		return 0, timeoutErr(err)
	}
	return int(count), nil
}

func (r *SchedulerGormRepository) CompletedForCategory(
	ctx context.Context,
	category string,
) ([]models.Appointment, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var aps []models.Appointment
	if err := db.
		Where(
			"status = 'completed' AND LOWER(goods_type) = LOWER(?) AND actual_duration_min IS NOT NULL",
			category,
		).
		Order("actual_end_utc ASC").
		Find(&aps).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return aps, nil
}

// --------------------------------------------------
// Docks
// --------------------------------------------------

func (r *SchedulerGormRepository) ListActiveDocks(
	ctx context.Context,
) ([]models.Dock, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var docks []models.Dock
	if err := db.
		Where("active = ?", true).
		Order("sort_order ASC, code ASC").
		Find(&docks).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return docks, nil
}

func (r *SchedulerGormRepository) DockAvailabilityForTemplate(
	ctx context.Context,
	slotTemplateID uint,
) ([]models.DockAvailability, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var rows []models.DockAvailability
	if err := db.
		Where("slot_template_id = ?", slotTemplateID).
		Find(&rows).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return rows, nil
}

func (r *SchedulerGormRepository) DockOverridesForDate(
	ctx context.Context,
	date time.Time,
) ([]models.DockOverride, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var rows []models.DockOverride
	if err := db.
		Where(
			"(date <= ? AND (date_end IS NULL AND date = ? OR date_end >= ?))",
			date, date, date,
		).
		Find(&rows).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return rows, nil
}

func (r *SchedulerGormRepository) LastDockUse(
	ctx context.Context,
) (map[uint]time.Time, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	type row struct {
		DockID  uint
		LastEnd time.Time
	}
	var rows []row
	if err := db.
		Model(&models.Appointment{}).
		Select("dock_id, MAX(end_utc) AS last_end").
		Where("dock_id IS NOT NULL AND status <> 'cancelled'").
		Group("dock_id").
		Scan(&rows).Error; err != nil {
		return nil, timeoutErr(err)
	}

	out := make(map[uint]time.Time, len(rows))
	for _, r := range rows {
		out[r.DockID] = r.LastEnd
	}
	return out, nil
}

func (r *SchedulerGormRepository) CountDockAppointmentsOverlapping(
	ctx context.Context,
	dockID uint,
	start time.Time,
	end time.Time,
	excludeID uint,
) (int, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	q := db.
		Model(&models.Appointment{}).
		Where(
			"dock_id = ? AND status <> 'cancelled' AND start_utc < ? AND end_utc > ?",
			dockID, end, start,
		)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, timeoutErr(err)
	}
	return int(count), nil
}

// --------------------------------------------------
// Calibration
// --------------------------------------------------

func (r *SchedulerGormRepository) GetCoefficientSet(
	ctx context.Context,
	category string,
) (*models.CoefficientSet, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var set models.CoefficientSet
	err := db.
		Where("category = ?", category).
		First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, timeoutErr(err)
	}
	return &set, nil
}

func (r *SchedulerGormRepository) UpsertCoefficientSet(
	ctx context.Context,
	set *models.CoefficientSet,
) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	return timeoutErr(db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "category"}},
			DoUpdates: clause.AssignmentColumns(
				[]string{"td", "ta", "tl", "tu", "max_minutes", "updated_at"},
			),
		}).
		Create(set).Error)
}

func (r *SchedulerGormRepository) CreateCalibrationRecord(
	ctx context.Context,
	rec *models.CalibrationRecord,
) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	return timeoutErr(db.Create(rec).Error)
}

func (r *SchedulerGormRepository) GetCalibrationRecord(
	ctx context.Context,
	id uint,
) (*models.CalibrationRecord, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var rec models.CalibrationRecord
	if err := db.First(&rec, id).Error; err != nil {
		return nil, timeoutErr(err)
	}
	return &rec, nil
}

func (r *SchedulerGormRepository) UpdateCalibrationRecord(
	ctx context.Context,
	rec *models.CalibrationRecord,
) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	return timeoutErr(db.Save(rec).Error)
}

// --------------------------------------------------
// Config
// --------------------------------------------------

func (r *SchedulerGormRepository) ConfigValues(
	ctx context.Context,
	keys []string,
) (map[string]string, error) {

	db, cancel := r.conn(ctx)
	defer cancel()

	var rows []models.AppConfig
	if err := db.
		Where("key IN ?", keys).
		Find(&rows).Error; err != nil {
		return nil, timeoutErr(err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (r *SchedulerGormRepository) SetConfigValue(
	ctx context.Context,
	key string,
	value string,
) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	return timeoutErr(db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&models.AppConfig{Key: key, Value: value}).Error)
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *SchedulerGormRepository) Transact(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	return timeoutErr(db.Transaction(func(tx *gorm.DB) error {
		return fn(&SchedulerGormRepository{db: tx, timeout: r.timeout})
	}))
}

var _ domain.Repository = (*SchedulerGormRepository)(nil)
