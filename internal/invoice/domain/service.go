package domain

import (
	"context"
	"errors"
)

// LineItemRequest is the caller's view of a desired line. It intentionally
// carries no price or name; those are resolved from the catalog.
type LineItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// RejectedRequest reports a line item request that could not be built.
type RejectedRequest struct {
	Request LineItemRequest `json:"request"`
	Reason  string          `json:"reason"`
	Err     error           `json:"-"`
}

// GenerateRequest drives the full invoice generation workflow.
type GenerateRequest struct {
	CustomerID string            `json:"customer_id"`
	Items      []LineItemRequest `json:"items"`
}

// GenerateResult is the workflow outcome. Rejected is populated even when the
// workflow fails so callers always see why lines were dropped. NotifyWarning
// is set when the invoice was created but its notification was not delivered.
type GenerateResult struct {
	Invoice       Invoice           `json:"invoice"`
	Rejected      []RejectedRequest `json:"rejected,omitempty"`
	NotifyWarning string            `json:"notify_warning,omitempty"`
}

type ListRequest struct {
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
}

// Builder converts line item requests into catalog-priced line items.
// Per-item failures are isolated: a bad request never aborts the batch, and
// accepted items keep the order of their requests.
type Builder interface {
	Build(ctx context.Context, requests []LineItemRequest) ([]LineItem, []RejectedRequest)
}

// Service composes, generates, and reads invoices.
type Service interface {
	// Generate runs Build, Compose, and the best-effort notification.
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)

	// Compose atomically creates an invoice from already-built line items.
	// Either the fully formed invoice exists afterwards or nothing does.
	Compose(ctx context.Context, customerID string, items []LineItem) (Invoice, error)

	List(ctx context.Context, req ListRequest) ([]Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
}

var (
	ErrEmptyInvoice    = errors.New("empty_invoice")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidLineItem = errors.New("invalid_line_item")
	ErrInvalidID       = errors.New("invalid_invoice_id")
	ErrInvoiceNotFound = errors.New("invoice_not_found")

	// ErrStoreRejected is terminal for a compose attempt: the store refused
	// the draft (e.g. unknown customer) and no invoice was created. Callers
	// must not blindly retry; a resubmission after a transport failure should
	// first check whether the invoice already exists.
	ErrStoreRejected = errors.New("store_rejected")
)
