package models

import "time"

type Provider struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name  string `gorm:"size:150;not null" json:"name"`
	Email string `gorm:"size:150" json:"email"`
	Phone string `gorm:"size:30" json:"phone"`

	// Free-form attributes (delivery preferences, default category).
	// Consumed only by the estimator's category fallback.
	Profile string `gorm:"type:text" json:"profile,omitempty"`

	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
