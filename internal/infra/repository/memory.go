package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/dockwise/scheduler/internal/domain/appointment"
	"github.com/dockwise/scheduler/internal/httperr"
	"github.com/dockwise/scheduler/internal/models"
)

// MemoryRepository is a mutex-guarded in-memory implementation used by
// tests and by the demo seeding path. Transact is a plain critical
// section: callers fail before mutating, so there is nothing to roll
// back.
type MemoryRepository struct {
	mu sync.RWMutex

	templates     []models.SlotTemplate
	overrides     []models.SlotOverride
	quickAdjusts  map[string]models.QuickAdjustment // keyed by date
	appointments  map[uint]*models.Appointment
	docks         []models.Dock
	dockAvail     []models.DockAvailability
	dockOverrides []models.DockOverride
	coeffSets     map[string]*models.CoefficientSet
	calibrations  map[uint]*models.CalibrationRecord
	config        map[string]string

	nextAppointmentID uint
	nextCalibrationID uint
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		quickAdjusts:      map[string]models.QuickAdjustment{},
		appointments:      map[uint]*models.Appointment{},
		coeffSets:         map[string]*models.CoefficientSet{},
		calibrations:      map[uint]*models.CalibrationRecord{},
		config:            map[string]string{},
		nextAppointmentID: 1,
		nextCalibrationID: 1,
	}
}

// --------------------------------------------------
// Seeding helpers (tests only)
// --------------------------------------------------

func (m *MemoryRepository) AddTemplate(t models.SlotTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		t.ID = uint(len(m.templates) + 1)
	}
	m.templates = append(m.templates, t)
}

func (m *MemoryRepository) AddOverride(o models.SlotOverride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = uint(len(m.overrides) + 1)
	m.overrides = append(m.overrides, o)
}

func (m *MemoryRepository) AddDock(d models.Dock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == 0 {
		d.ID = uint(len(m.docks) + 1)
	}
	m.docks = append(m.docks, d)
}

func (m *MemoryRepository) AddDockAvailability(a models.DockAvailability) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dockAvail = append(m.dockAvail, a)
}

func (m *MemoryRepository) AddDockOverride(o models.DockOverride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dockOverrides = append(m.dockOverrides, o)
}

// --------------------------------------------------
// Slot templates / overrides
// --------------------------------------------------

func (m *MemoryRepository) TemplatesForDay(
	_ context.Context,
	dayOfWeek int,
) ([]models.SlotTemplate, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.SlotTemplate
	for _, t := range m.templates {
		if t.DayOfWeek == dayOfWeek && t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *MemoryRepository) OverridesForDate(
	_ context.Context,
	date time.Time,
) ([]models.SlotOverride, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.SlotOverride
	for _, o := range m.overrides {
		if coversDate(o.Date, o.DateEnd, date) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryRepository) QuickAdjustmentForDate(
	_ context.Context,
	date time.Time,
) (*models.QuickAdjustment, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	if adj, ok := m.quickAdjusts[dayKey(date)]; ok {
		out := adj
		return &out, nil
	}
	return nil, nil
}

func (m *MemoryRepository) SetQuickAdjustment(
	_ context.Context,
	date time.Time,
	level string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quickAdjusts[dayKey(date)] = models.QuickAdjustment{Date: date, Level: level}
	return nil
}

func (m *MemoryRepository) ClearQuickAdjustment(_ context.Context, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.quickAdjusts, dayKey(date))
	return nil
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (m *MemoryRepository) GetAppointment(
	_ context.Context,
	id uint,
) (*models.Appointment, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	ap, ok := m.appointments[id]
	if !ok {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	cp := *ap
	return &cp, nil
}

func (m *MemoryRepository) GetAppointmentByToken(
	_ context.Context,
	token string,
) (*models.Appointment, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ap := range m.appointments {
		if ap.ConfirmationToken == token {
			cp := *ap
			return &cp, nil
		}
	}
	return nil, httperr.ErrBusiness("appointment_not_found")
}

func (m *MemoryRepository) CreateAppointment(
	_ context.Context,
	ap *models.Appointment,
) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	ap.ID = m.nextAppointmentID
	m.nextAppointmentID++
	ap.CreatedAt = time.Now()
	if ap.Status == "" {
		ap.Status = "pending"
	}
	cp := *ap
	m.appointments[ap.ID] = &cp
	return nil
}

func (m *MemoryRepository) UpdateAppointment(
	_ context.Context,
	ap *models.Appointment,
) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appointments[ap.ID]; !ok {
		return httperr.ErrBusiness("appointment_not_found")
	}
	cp := *ap
	m.appointments[ap.ID] = &cp
	return nil
}

func (m *MemoryRepository) UpdateAppointmentVersioned(
	_ context.Context,
	ap *models.Appointment,
) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.appointments[ap.ID]
	if !ok {
		return httperr.ErrBusiness("appointment_not_found")
	}
	if stored.Version != ap.Version {
		return httperr.ErrBusiness("appointment_modified_concurrently")
	}
	ap.Version++
	cp := *ap
	m.appointments[ap.ID] = &cp
	return nil
}

func (m *MemoryRepository) ListAppointments(
	_ context.Context,
	from time.Time,
	to time.Time,
	providerID *uint,
) ([]models.Appointment, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Appointment
	for _, ap := range m.appointments {
		if ap.StartUTC.Before(from) || !ap.StartUTC.Before(to) {
			continue
		}
		if providerID != nil && (ap.ProviderID == nil || *ap.ProviderID != *providerID) {
			continue
		}
		out = append(out, *ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartUTC.Before(out[j].StartUTC) })
	return out, nil
}

func (m *MemoryRepository) ActiveAppointmentsOverlapping(
	_ context.Context,
	start time.Time,
	end time.Time,
	excludeID uint,
) ([]models.Appointment, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Appointment
	for _, ap := range m.appointments {
		if ap.ID == excludeID || !domain.Active(ap) {
			continue
		}
		if domain.Overlaps(ap, start, end) {
			out = append(out, *ap)
		}
	}
	return out, nil
}

func (m *MemoryRepository) ActivePointsOverlapping(
	ctx context.Context,
	start time.Time,
	end time.Time,
	excludeID uint,
) (int, error) {

	aps, err := m.ActiveAppointmentsOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, ap := range aps {
		total += ap.PointsUsed
	}
	return total, nil
}

func (m *MemoryRepository) CountActiveBetween(
	ctx context.Context,
	start time.Time,
	end time.Time,
) (int, error) {

	aps, err := m.ActiveAppointmentsOverlapping(ctx, start, end, 0)
	if err != nil {
		return 0, err
	}
	return len(aps), nil
}

func (m *MemoryRepository) CompletedForCategory(
	_ context.Context,
	category string,
) ([]models.Appointment, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Appointment
	for _, ap := range m.appointments {
		if ap.Status != "completed" || ap.ActualDurationMin == nil {
			continue
		}
		if !strings.EqualFold(ap.GoodsType, category) {
			continue
		}
		out = append(out, *ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --------------------------------------------------
// Docks
// --------------------------------------------------

func (m *MemoryRepository) ListActiveDocks(_ context.Context) ([]models.Dock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Dock
	for _, d := range m.docks {
		if d.Active {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (m *MemoryRepository) DockAvailabilityForTemplate(
	_ context.Context,
	slotTemplateID uint,
) ([]models.DockAvailability, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.DockAvailability
	for _, a := range m.dockAvail {
		if a.SlotTemplateID == slotTemplateID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryRepository) DockOverridesForDate(
	_ context.Context,
	date time.Time,
) ([]models.DockOverride, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.DockOverride
	for _, o := range m.dockOverrides {
		if coversDate(o.Date, o.DateEnd, date) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryRepository) LastDockUse(_ context.Context) (map[uint]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := map[uint]time.Time{}
	for _, ap := range m.appointments {
		if ap.DockID == nil || !domain.Active(ap) {
			continue
		}
		if ap.EndUTC.After(out[*ap.DockID]) {
			out[*ap.DockID] = ap.EndUTC
		}
	}
	return out, nil
}

func (m *MemoryRepository) CountDockAppointmentsOverlapping(
	_ context.Context,
	dockID uint,
	start time.Time,
	end time.Time,
	excludeID uint,
) (int, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, ap := range m.appointments {
		if ap.ID == excludeID || !domain.Active(ap) {
			continue
		}
		if ap.DockID == nil || *ap.DockID != dockID {
			continue
		}
		if domain.Overlaps(ap, start, end) {
			count++
		}
	}
	return count, nil
}

// --------------------------------------------------
// Calibration
// --------------------------------------------------

func (m *MemoryRepository) GetCoefficientSet(
	_ context.Context,
	category string,
) (*models.CoefficientSet, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	if set, ok := m.coeffSets[category]; ok {
		cp := *set
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) UpsertCoefficientSet(
	_ context.Context,
	set *models.CoefficientSet,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.coeffSets[set.Category]; ok {
		set.ID = existing.ID
	} else {
		set.ID = uint(len(m.coeffSets) + 1)
	}
	cp := *set
	m.coeffSets[set.Category] = &cp
	return nil
}

func (m *MemoryRepository) CreateCalibrationRecord(
	_ context.Context,
	rec *models.CalibrationRecord,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextCalibrationID
	m.nextCalibrationID++
	rec.CreatedAt = time.Now()
	cp := *rec
	m.calibrations[rec.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetCalibrationRecord(
	_ context.Context,
	id uint,
) (*models.CalibrationRecord, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.calibrations[id]
	if !ok {
		return nil, httperr.ErrBusiness("calibration_record_not_found")
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryRepository) UpdateCalibrationRecord(
	_ context.Context,
	rec *models.CalibrationRecord,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.calibrations[rec.ID]; !ok {
		return httperr.ErrBusiness("calibration_record_not_found")
	}
	cp := *rec
	m.calibrations[rec.ID] = &cp
	return nil
}

// --------------------------------------------------
// Config
// --------------------------------------------------

func (m *MemoryRepository) ConfigValues(
	_ context.Context,
	keys []string,
) (map[string]string, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := map[string]string{}
	for _, key := range keys {
		if v, ok := m.config[key]; ok {
			out[key] = v
		}
	}
	return out, nil
}

func (m *MemoryRepository) SetConfigValue(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config[key] = value
	return nil
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (m *MemoryRepository) Transact(
	_ context.Context,
	fn func(domain.Repository) error,
) error {
	return fn(m)
}

func dayKey(t time.Time) string {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

func coversDate(start time.Time, end *time.Time, date time.Time) bool {
	d := dayKey(date)
	if end == nil {
		return dayKey(start) == d
	}
	return dayKey(start) <= d && d <= dayKey(*end)
}

var _ domain.Repository = (*MemoryRepository)(nil)
