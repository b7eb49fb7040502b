// Package domain contains billing report projections.
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceReportRow is one invoice in the full invoice report.
type InvoiceReportRow struct {
	InvoiceID         string          `json:"invoice_id"`
	CustomerID        string          `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	Status            string          `json:"status"`
	InvoiceDate       time.Time       `json:"invoice_date"`
	DueAt             time.Time       `json:"due_at"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// OutstandingReportRow is one invoice still carrying a balance. Rows with a
// zero or negative balance never appear here.
type OutstandingReportRow struct {
	InvoiceID         string          `json:"invoice_id"`
	CustomerID        string          `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	DueAt             time.Time       `json:"due_at"`
	Overdue           bool            `json:"overdue"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// InvoiceReportFilter narrows the invoice report.
type InvoiceReportFilter struct {
	CustomerID string     `form:"customer_id"`
	Status     string     `form:"status"`
	StartAt    *time.Time `form:"start_at"`
	EndAt      *time.Time `form:"end_at"`
}

// Service builds read-only projections over invoices. Reports never mutate
// billing state.
type Service interface {
	InvoiceReport(ctx context.Context, filter InvoiceReportFilter) ([]InvoiceReportRow, error)
	OutstandingReport(ctx context.Context) ([]OutstandingReportRow, error)
}
