package models

import "time"

// SlotTemplate is the weekly recurring capacity definition. Times are
// HH:MM strings in warehouse local time.
type SlotTemplate struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DayOfWeek int    `gorm:"uniqueIndex:idx_slot_tpl_window" json:"day_of_week"`
	StartTime string `gorm:"size:5;uniqueIndex:idx_slot_tpl_window" json:"start_time"`
	EndTime   string `gorm:"size:5;uniqueIndex:idx_slot_tpl_window" json:"end_time"`
	MaxPoints int    `json:"max_points"`
	Active    bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlotOverride replaces template capacity for a date or date range.
// Empty StartTime applies the override to every window that day.
type SlotOverride struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Date    time.Time  `gorm:"index" json:"date"`
	DateEnd *time.Time `json:"date_end"`

	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	MaxPoints int    `json:"max_points"`
	Reason    string `gorm:"size:255" json:"reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuickAdjustment is a day-scoped percentage scaling of slot capacity.
// At most one row per date; "normal" is represented by absence.
type QuickAdjustment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Date  time.Time `gorm:"uniqueIndex" json:"date"`
	Level string    `gorm:"size:20" json:"level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
