package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	invoicedomain "github.com/invopond/invopond/internal/invoice/domain"
)

type RecordRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference *string         `json:"reference,omitempty"`
}

// RecordResult returns the stored payment together with the invoice as it
// stands after the payment was applied.
type RecordResult struct {
	Payment Payment               `json:"payment"`
	Invoice invoicedomain.Invoice `json:"invoice"`
}

type Service interface {
	// Record applies a payment to an invoice and recomputes its status.
	// The payment row and the invoice update commit together.
	Record(ctx context.Context, req RecordRequest) (RecordResult, error)

	ListByInvoice(ctx context.Context, invoiceID string) ([]Payment, error)
}

var (
	ErrInvalidAmount = errors.New("invalid_payment_amount")
	ErrOverpayment   = errors.New("payment_exceeds_outstanding")
	ErrAlreadyPaid   = errors.New("invoice_already_paid")
)
