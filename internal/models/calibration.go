package models

import "time"

// CoefficientSet holds the active duration-prediction coefficients for
// a goods category: minutes = TD + TA·units + TL·lines + TU·deliveryNotes.
type CoefficientSet struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Category string  `gorm:"size:50;uniqueIndex;not null" json:"category"`
	TD       float64 `json:"td"`
	TA       float64 `json:"ta"`
	TL       float64 `json:"tl"`
	TU       float64 `json:"tu"`

	// Clamp for runaway estimates; 0 means use the global default.
	MaxMinutes float64 `json:"max_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CalibrationRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Category   string `gorm:"size:50;index" json:"category"`
	SampleSize int    `json:"sample_size"`

	OldTD float64 `json:"old_td"`
	OldTA float64 `json:"old_ta"`
	OldTL float64 `json:"old_tl"`
	OldTU float64 `json:"old_tu"`

	NewTD float64 `json:"new_td"`
	NewTA float64 `json:"new_ta"`
	NewTL float64 `json:"new_tl"`
	NewTU float64 `json:"new_tu"`

	MAEOld float64 `gorm:"column:mae_old" json:"mae_old"`
	MAENew float64 `gorm:"column:mae_new" json:"mae_new"`

	Status    string     `gorm:"size:20;default:'pending'" json:"status"`
	AppliedAt *time.Time `json:"applied_at"`
	AppliedBy string     `gorm:"size:100" json:"applied_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
