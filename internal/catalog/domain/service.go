package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Active      *bool            `json:"active"`
	Metadata    map[string]any   `json:"metadata"`
}

type UpdateRequest struct {
	ID          string           `json:"id"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

type ListRequest struct {
	Name   string `form:"name"`
	Active *bool  `form:"active"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Product, error)
	List(ctx context.Context, req ListRequest) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, req UpdateRequest) (Product, error)
	Archive(ctx context.Context, id string) (Product, error)

	// Resolve returns the current snapshot for an active product. Callers
	// must re-resolve on every line item build; snapshots are never cached.
	Resolve(ctx context.Context, productID string) (Snapshot, error)
}

var (
	ErrInvalidID          = errors.New("invalid_product_id")
	ErrInvalidName        = errors.New("invalid_product_name")
	ErrInvalidPrice       = errors.New("invalid_product_price")
	ErrProductNotFound    = errors.New("product_not_found")
	ErrCatalogUnavailable = errors.New("catalog_unavailable")
)
