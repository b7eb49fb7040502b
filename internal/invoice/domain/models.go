// Package domain contains invoice models and the billing workflow contracts.
package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "PENDING"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
)

// PaymentTerm is the default span between invoice creation and its due date.
const PaymentTerm = 30 * 24 * time.Hour

// Invoice is an append-only billing record. Created once by compose; only
// payment recording mutates it afterwards.
type Invoice struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	Status      InvoiceStatus `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"total_amount"`
	PaidAmount  decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"paid_amount"`
	DueAt       time.Time     `gorm:"not null" json:"due_at"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Outstanding returns total minus paid.
func (i Invoice) Outstanding() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// MarshalJSON serializes the invoice with the derived outstanding_amount
// alongside the stored columns.
func (i Invoice) MarshalJSON() ([]byte, error) {
	type alias Invoice
	return json.Marshal(struct {
		alias
		OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	}{
		alias:             alias(i),
		OutstandingAmount: i.Outstanding(),
	})
}

// RecalculateStatus derives the lifecycle state from the paid amount.
func (i *Invoice) RecalculateStatus() {
	switch {
	case i.PaidAmount.GreaterThanOrEqual(i.TotalAmount):
		i.Status = InvoiceStatusPaid
	case i.PaidAmount.IsPositive():
		i.Status = InvoiceStatusPartiallyPaid
	default:
		i.Status = InvoiceStatusPending
	}
}

// InvoiceItem is a persisted line on an invoice. Name and unit price are the
// catalog snapshot taken at compose time.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	ProductID   snowflake.ID    `gorm:"not null" json:"product_id"`
	ProductName string          `gorm:"type:text;not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"unit_price"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"line_total"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// LineItem is a priced, catalog-resolved line awaiting composition. It exists
// only in memory; ProductName and UnitPrice always come from a catalog
// snapshot, never from the caller.
type LineItem struct {
	ProductID   snowflake.ID    `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
}

// LineTotal returns unit price times quantity with exact decimal arithmetic.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}
