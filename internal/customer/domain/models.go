// Package domain contains customer models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is a billable party.
type Customer struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Email        string       `gorm:"type:text;not null;index" json:"email"`
	MobileNumber *string      `gorm:"type:text" json:"mobile_number,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
