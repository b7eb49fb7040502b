package service

import (
	"context"
	"errors"
	"testing"

	catalogdomain "github.com/invopond/invopond/internal/catalog/domain"
	invoicedomain "github.com/invopond/invopond/internal/invoice/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// flakyCatalog resolves from a fixed snapshot set and fails designated ids
// with a transport error.
type flakyCatalog struct {
	catalogdomain.Service

	snapshots   map[string]catalogdomain.Snapshot
	unavailable map[string]bool
}

func (c *flakyCatalog) Resolve(ctx context.Context, productID string) (catalogdomain.Snapshot, error) {
	if c.unavailable[productID] {
		return catalogdomain.Snapshot{}, catalogdomain.ErrCatalogUnavailable
	}
	snapshot, ok := c.snapshots[productID]
	if !ok {
		return catalogdomain.Snapshot{}, catalogdomain.ErrProductNotFound
	}
	return snapshot, nil
}

func newStubBuilder(catalog catalogdomain.Service) *Builder {
	return &Builder{log: zap.NewNop(), catalogSvc: catalog}
}

func TestBuildIsolatesCatalogOutagePerItem(t *testing.T) {
	catalog := &flakyCatalog{
		snapshots: map[string]catalogdomain.Snapshot{
			"1001": {ProductID: "1001", Name: "Widget", Price: decimal.RequireFromString("19.99")},
		},
		unavailable: map[string]bool{"1002": true},
	}
	builder := newStubBuilder(catalog)

	items, rejected := builder.Build(context.Background(), []invoicedomain.LineItemRequest{
		{ProductID: "1001", Quantity: 2},
		{ProductID: "1002", Quantity: 1},
	})
	if len(items) != 1 {
		t.Fatalf("expected 1 accepted item, got %d", len(items))
	}
	if items[0].ProductName != "Widget" {
		t.Fatalf("expected Widget to survive the outage, got %q", items[0].ProductName)
	}
	if len(rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(rejected))
	}
	if !errors.Is(rejected[0].Err, catalogdomain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", rejected[0].Err)
	}
	if rejected[0].Reason != "catalog_unavailable" {
		t.Fatalf("expected reason catalog_unavailable, got %q", rejected[0].Reason)
	}
	if rejected[0].Request.ProductID != "1002" {
		t.Fatalf("expected the failing request echoed back, got %+v", rejected[0].Request)
	}
}

func TestBuildRejectionReasons(t *testing.T) {
	catalog := &flakyCatalog{
		snapshots: map[string]catalogdomain.Snapshot{
			"1001": {ProductID: "1001", Name: "Widget", Price: decimal.RequireFromString("19.99")},
		},
	}
	builder := newStubBuilder(catalog)

	items, rejected := builder.Build(context.Background(), []invoicedomain.LineItemRequest{
		{ProductID: "", Quantity: 1},
		{ProductID: "1001", Quantity: 0},
		{ProductID: "9999", Quantity: 1},
	})
	if len(items) != 0 {
		t.Fatalf("expected no accepted items, got %d", len(items))
	}
	if len(rejected) != 3 {
		t.Fatalf("expected 3 rejections, got %d", len(rejected))
	}

	wantErrs := []error{
		invoicedomain.ErrInvalidLineItem,
		invoicedomain.ErrInvalidLineItem,
		catalogdomain.ErrProductNotFound,
	}
	wantReasons := []string{"invalid_line_item", "invalid_line_item", "product_not_found"}
	for i, rej := range rejected {
		if !errors.Is(rej.Err, wantErrs[i]) {
			t.Fatalf("rejection %d: expected %v, got %v", i, wantErrs[i], rej.Err)
		}
		if rej.Reason != wantReasons[i] {
			t.Fatalf("rejection %d: expected reason %q, got %q", i, wantReasons[i], rej.Reason)
		}
	}
}
