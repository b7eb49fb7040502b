package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/invopond/invopond/internal/audit/domain"
	"github.com/invopond/invopond/internal/clock"
	"github.com/invopond/invopond/internal/events"
	invoicedomain "github.com/invopond/invopond/internal/invoice/domain"
	paymentdomain "github.com/invopond/invopond/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Outbox   *events.Outbox       `optional:"true"`
	AuditSvc auditdomain.Service  `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	outbox   *events.Outbox
	auditSvc auditdomain.Service
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		outbox:   p.Outbox,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Record(ctx context.Context, req paymentdomain.RecordRequest) (paymentdomain.RecordResult, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil {
		return paymentdomain.RecordResult{}, invoicedomain.ErrInvalidID
	}
	if !req.Amount.IsPositive() {
		return paymentdomain.RecordResult{}, paymentdomain.ErrInvalidAmount
	}

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = "manual"
	}

	now := s.clock.Now()
	payment := paymentdomain.Payment{
		ID:        s.genID.Generate(),
		InvoiceID: invoiceID,
		Amount:    req.Amount,
		Method:    method,
		Reference: req.Reference,
		CreatedAt: now,
	}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the invoice row so concurrent payments serialize on it.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&invoice, "id = ?", invoiceID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invoicedomain.ErrInvoiceNotFound
			}
			return err
		}
		if invoice.Status == invoicedomain.InvoiceStatusPaid {
			return paymentdomain.ErrAlreadyPaid
		}
		if req.Amount.GreaterThan(invoice.Outstanding()) {
			return paymentdomain.ErrOverpayment
		}

		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		invoice.PaidAmount = invoice.PaidAmount.Add(req.Amount)
		invoice.RecalculateStatus()
		invoice.UpdatedAt = now
		err = tx.Model(&invoicedomain.Invoice{}).
			Where("id = ?", invoice.ID).
			Updates(map[string]any{
				"paid_amount": invoice.PaidAmount,
				"status":      invoice.Status,
				"updated_at":  now,
			}).Error
		if err != nil {
			return err
		}

		if s.outbox != nil {
			payload := events.PaymentSettledPayload{
				PaymentID:  payment.ID.String(),
				InvoiceID:  invoice.ID.String(),
				CustomerID: invoice.CustomerID.String(),
				Amount:     req.Amount.String(),
				Status:     string(invoice.Status),
			}
			return s.outbox.PublishTx(ctx, tx, events.Event{
				Type:      events.EventPaymentSettled,
				Payload:   payload.ToMap(),
				DedupeKey: "payment.settled:" + payment.ID.String(),
			})
		}
		return nil
	})
	if err != nil {
		return paymentdomain.RecordResult{}, err
	}

	if s.auditSvc != nil {
		paymentID := payment.ID.String()
		_ = s.auditSvc.Record(ctx, auditdomain.ActorTypeSystem, nil,
			"payment.recorded", "payment", &paymentID,
			map[string]any{
				"invoice_id": invoice.ID.String(),
				"amount":     req.Amount.String(),
				"status":     string(invoice.Status),
			})
	}

	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("status", string(invoice.Status)),
	)
	return paymentdomain.RecordResult{Payment: payment, Invoice: invoice}, nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID string) ([]paymentdomain.Payment, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(invoiceID))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	var payments []paymentdomain.Payment
	err = s.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
