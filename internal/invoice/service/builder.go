package service

import (
	"context"
	"errors"
	"strings"

	catalogdomain "github.com/invopond/invopond/internal/catalog/domain"
	invoicedomain "github.com/invopond/invopond/internal/invoice/domain"
	"github.com/invopond/invopond/internal/observability/metrics"
	"golang.org/x/sync/errgroup"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// resolveConcurrency bounds parallel catalog lookups per build.
const resolveConcurrency = 4

type BuilderParams struct {
	fx.In

	Log        *zap.Logger
	CatalogSvc catalogdomain.Service
	Metrics    *metrics.BillingMetrics `optional:"true"`
}

// Builder prices line item requests against the catalog. Lookups run
// concurrently but results are written by request index, so accepted items
// keep their request order.
type Builder struct {
	log        *zap.Logger
	catalogSvc catalogdomain.Service
	metrics    *metrics.BillingMetrics
}

func NewBuilder(p BuilderParams) invoicedomain.Builder {
	return &Builder{
		log:        p.Log.Named("invoice.builder"),
		catalogSvc: p.CatalogSvc,
		metrics:    p.Metrics,
	}
}

type buildOutcome struct {
	item invoicedomain.LineItem
	err  error
}

func (b *Builder) Build(ctx context.Context, requests []invoicedomain.LineItemRequest) ([]invoicedomain.LineItem, []invoicedomain.RejectedRequest) {
	outcomes := make([]buildOutcome, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, req := range requests {
		g.Go(func() error {
			outcomes[i] = b.buildOne(gctx, req)
			return nil
		})
	}
	// Workers never return errors; per-item failures land in outcomes.
	_ = g.Wait()

	items := make([]invoicedomain.LineItem, 0, len(requests))
	var rejected []invoicedomain.RejectedRequest
	for i, outcome := range outcomes {
		if outcome.err != nil {
			reason := rejectionReason(outcome.err)
			b.metrics.IncLineItemRejected(reason)
			b.log.Debug("line item rejected",
				zap.String("product_id", requests[i].ProductID),
				zap.String("reason", reason),
			)
			rejected = append(rejected, invoicedomain.RejectedRequest{
				Request: requests[i],
				Reason:  reason,
				Err:     outcome.err,
			})
			continue
		}
		items = append(items, outcome.item)
	}
	return items, rejected
}

func (b *Builder) buildOne(ctx context.Context, req invoicedomain.LineItemRequest) buildOutcome {
	if strings.TrimSpace(req.ProductID) == "" || req.Quantity < 1 {
		return buildOutcome{err: invoicedomain.ErrInvalidLineItem}
	}

	snapshot, err := b.catalogSvc.Resolve(ctx, req.ProductID)
	if err != nil {
		return buildOutcome{err: err}
	}

	productID, err := parseID(snapshot.ProductID)
	if err != nil {
		return buildOutcome{err: invoicedomain.ErrInvalidLineItem}
	}

	return buildOutcome{item: invoicedomain.LineItem{
		ProductID:   productID,
		ProductName: snapshot.Name,
		UnitPrice:   snapshot.Price,
		Quantity:    req.Quantity,
	}}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrInvalidLineItem):
		return "invalid_line_item"
	case errors.Is(err, catalogdomain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, catalogdomain.ErrCatalogUnavailable):
		return "catalog_unavailable"
	default:
		return "internal_error"
	}
}
