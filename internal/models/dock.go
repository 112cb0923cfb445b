package models

import "time"

type Dock struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Code      string `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Name      string `gorm:"size:100;not null" json:"name"`
	SortOrder int    `json:"sort_order"`
	Active    bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DockAvailability toggles a dock for a specific template window.
// A dock with no row for a template is considered available.
type DockAvailability struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DockID         uint `gorm:"uniqueIndex:idx_dock_slot" json:"dock_id"`
	SlotTemplateID uint `gorm:"uniqueIndex:idx_dock_slot" json:"slot_template_id"`
	IsActive       bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DockOverride enables or disables a dock for a date range, taking
// precedence over DockAvailability.
type DockOverride struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DockID  uint       `gorm:"index" json:"dock_id"`
	Date    time.Time  `gorm:"index" json:"date"`
	DateEnd *time.Time `json:"date_end"`

	IsActive bool   `json:"is_active"`
	Reason   string `gorm:"size:255" json:"reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
