// Package domain contains the product catalog models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is a sellable catalog entry. Price is the authoritative unit price;
// invoice line items must never carry a caller-supplied price.
type Product struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Description *string           `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal   `gorm:"type:numeric(18,4);not null" json:"price"`
	Active      bool              `gorm:"not null;default:true" json:"active"`
	Metadata    datatypes.JSONMap `gorm:"not null;default:'{}'" json:"metadata"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// Snapshot is the immutable view of a product at resolve time. Line items are
// priced from a Snapshot, so later catalog edits never rewrite history.
type Snapshot struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}
