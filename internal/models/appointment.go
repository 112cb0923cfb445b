package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProviderID *uint     `json:"provider_id"`
	Provider   *Provider `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"provider,omitempty"`

	ProviderName string `gorm:"size:150;not null" json:"provider_name"`

	StartUTC time.Time `gorm:"column:start_utc;index" json:"start_utc"`
	EndUTC   time.Time `gorm:"column:end_utc" json:"end_utc"`

	// Slot the appointment was booked into, in warehouse local time.
	SlotDate      time.Time `gorm:"index" json:"slot_date"`
	SlotStartTime string    `gorm:"size:5" json:"slot_start_time"`

	WorkMinutesNeeded int    `json:"work_minutes_needed"`
	ForkliftsNeeded   int    `json:"forklifts_needed"`
	GoodsType         string `gorm:"size:50" json:"goods_type"`

	Units              *int `json:"units"`
	Lines              *int `json:"lines"`
	DeliveryNotesCount *int `json:"delivery_notes_count"`

	// Comma-separated field names that were filled in from category
	// ratios rather than provided by the caller.
	EstimatedFields string `gorm:"size:100" json:"estimated_fields,omitempty"`

	Size       string `gorm:"size:1" json:"size"`
	PointsUsed int    `json:"points_used"`

	DockID *uint `json:"dock_id"`
	Dock   *Dock `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"dock,omitempty"`

	Status string `gorm:"size:20;default:'pending';index" json:"status"`

	ConfirmationToken  string     `gorm:"size:36;index" json:"-"`
	ConfirmedAt        *time.Time `json:"confirmed_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason string     `gorm:"size:255" json:"cancellation_reason,omitempty"`

	ActualStartUTC     *time.Time `gorm:"column:actual_start_utc" json:"actual_start_utc"`
	ActualEndUTC       *time.Time `gorm:"column:actual_end_utc" json:"actual_end_utc"`
	ActualDurationMin  *float64   `json:"actual_duration_min"`
	PredictionErrorMin *float64   `json:"prediction_error_min"`
	CheckedInBy        string     `gorm:"size:100" json:"checked_in_by,omitempty"`

	// Optimistic concurrency for single-row check-in/check-out updates.
	Version int `gorm:"default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
