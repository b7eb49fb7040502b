package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/invopond/invopond/internal/customer/domain"
	"github.com/invopond/invopond/internal/clock"
	"github.com/invopond/invopond/internal/events"
	invoicedomain "github.com/invopond/invopond/internal/invoice/domain"
	notifydomain "github.com/invopond/invopond/internal/notify/domain"
	"github.com/invopond/invopond/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Builder  invoicedomain.Builder
	Outbox   *events.Outbox          `optional:"true"`
	Notifier notifydomain.Service    `optional:"true"`
	Metrics  *metrics.BillingMetrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	builder  invoicedomain.Builder
	outbox   *events.Outbox
	notifier notifydomain.Service
	metrics  *metrics.BillingMetrics
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		builder:  p.Builder,
		outbox:   p.Outbox,
		notifier: p.Notifier,
		metrics:  p.Metrics,
	}
}

// Generate builds line items, composes the invoice, and attempts the
// post-compose notification. A notification failure is downgraded to a
// warning on the result; the composed invoice always stands.
func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (invoicedomain.GenerateResult, error) {
	items, rejected := s.builder.Build(ctx, req.Items)
	result := invoicedomain.GenerateResult{Rejected: rejected}

	inv, err := s.Compose(ctx, req.CustomerID, items)
	if err != nil {
		return result, err
	}
	result.Invoice = inv

	if s.notifier == nil {
		result.NotifyWarning = "notification skipped: no notifier configured"
		s.metrics.IncNotify("skipped")
		return result, nil
	}
	if err := s.notifier.Notify(ctx, inv.CustomerID.String(), inv.ID.String()); err != nil {
		s.log.Warn("invoice notification failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("customer_id", inv.CustomerID.String()),
			zap.Error(err),
		)
		result.NotifyWarning = "invoice created but notification failed: " + err.Error()
	}
	return result, nil
}

// Compose creates the invoice and its items in one transaction. Nothing is
// written when validation fails, so a rejected compose leaves no partial
// rows behind.
func (s *Service) Compose(ctx context.Context, customerID string, items []invoicedomain.LineItem) (invoicedomain.Invoice, error) {
	custID, err := parseID(customerID)
	if err != nil {
		s.metrics.IncInvoiceComposed("rejected")
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidCustomer
	}
	if len(items) == 0 {
		s.metrics.IncInvoiceComposed("rejected")
		return invoicedomain.Invoice{}, invoicedomain.ErrEmptyInvoice
	}
	for _, item := range items {
		if item.Quantity < 1 || item.UnitPrice.IsNegative() {
			s.metrics.IncInvoiceComposed("rejected")
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidLineItem
		}
	}

	now := s.clock.Now()
	total := decimal.Zero
	invoice := invoicedomain.Invoice{
		ID:         s.genID.Generate(),
		CustomerID: custID,
		Status:     invoicedomain.InvoiceStatusPending,
		PaidAmount: decimal.Zero,
		DueAt:      now.Add(invoicedomain.PaymentTerm),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, item := range items {
		lineTotal := item.LineTotal()
		total = total.Add(lineTotal)
		invoice.Items = append(invoice.Items, invoicedomain.InvoiceItem{
			ID:          s.genID.Generate(),
			InvoiceID:   invoice.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   lineTotal,
			CreatedAt:   now,
		})
	}
	invoice.TotalAmount = total

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&customerdomain.Customer{}).Where("id = ?", custID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return invoicedomain.ErrStoreRejected
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		if s.outbox != nil {
			payload := events.InvoiceCreatedPayload{
				InvoiceID:   invoice.ID.String(),
				CustomerID:  custID.String(),
				TotalAmount: total.String(),
				LineItems:   len(invoice.Items),
			}
			return s.outbox.PublishTx(ctx, tx, events.Event{
				Type:      events.EventInvoiceCreated,
				Payload:   payload.ToMap(),
				DedupeKey: "invoice.created:" + invoice.ID.String(),
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, invoicedomain.ErrStoreRejected) {
			s.metrics.IncInvoiceComposed("rejected")
			return invoicedomain.Invoice{}, invoicedomain.ErrStoreRejected
		}
		s.metrics.IncInvoiceComposed("failed")
		s.log.Error("failed to compose invoice",
			zap.String("customer_id", custID.String()),
			zap.Error(err),
		)
		return invoicedomain.Invoice{}, err
	}

	s.metrics.IncInvoiceComposed("created")
	s.log.Info("invoice composed",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("customer_id", custID.String()),
		zap.String("total_amount", total.String()),
		zap.Int("line_items", len(invoice.Items)),
	)
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListRequest) ([]invoicedomain.Invoice, error) {
	query := s.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).Preload("Items")
	if customerID := strings.TrimSpace(req.CustomerID); customerID != "" {
		id, err := parseID(customerID)
		if err != nil {
			return nil, invoicedomain.ErrInvalidCustomer
		}
		query = query.Where("customer_id = ?", id)
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var invoices []invoicedomain.Invoice
	if err := query.Order("created_at DESC, id DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).Preload("Items").First(&invoice, "id = ?", invoiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
		}
		return invoicedomain.Invoice{}, err
	}
	return invoice, nil
}

func parseID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty_id")
	}
	return snowflake.ParseString(raw)
}
