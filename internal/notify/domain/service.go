// Package domain defines the post-compose notification contract.
package domain

import (
	"context"
	"errors"
)

// Service delivers a single best-effort notification for a created invoice.
// One attempt, at-most-once; a failure must never unwind the invoice it
// refers to.
type Service interface {
	Notify(ctx context.Context, customerID, invoiceID string) error
}

var (
	ErrNotifyFailed    = errors.New("notify_failed")
	ErrNotifyDisabled  = errors.New("notify_disabled")
	ErrUnknownCustomer = errors.New("notify_unknown_customer")
)
