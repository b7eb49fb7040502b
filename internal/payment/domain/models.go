// Package domain contains payment models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Payment records money received against a single invoice. Rows are
// append-only; corrections are new payments, never edits.
type Payment struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"amount"`
	Method    string          `gorm:"type:text;not null;default:'manual'" json:"method"`
	Reference *string         `gorm:"type:text" json:"reference,omitempty"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
