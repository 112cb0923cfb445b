package models

import "time"

// AppConfig is a key/value store for operator-editable settings,
// including the scheduling rules.
type AppConfig struct {
	Key         string `gorm:"primaryKey;size:100" json:"key"`
	Value       string `gorm:"type:text" json:"value"`
	Description string `gorm:"size:255" json:"description,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
