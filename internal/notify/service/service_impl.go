package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/invopond/invopond/internal/cache"
	"github.com/invopond/invopond/internal/config"
	customerdomain "github.com/invopond/invopond/internal/customer/domain"
	"github.com/invopond/invopond/internal/events"
	notifydomain "github.com/invopond/invopond/internal/notify/domain"
	"github.com/invopond/invopond/internal/observability/metrics"
	"github.com/invopond/invopond/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// emailCacheTTL bounds how stale a cached recipient address may be.
const emailCacheTTL = 30 * time.Second

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	CustomerSvc customerdomain.Service
	Outbox      *events.Outbox          `optional:"true"`
	Metrics     *metrics.BillingMetrics `optional:"true"`
}

// Service posts invoice notifications to a webhook. Delivery is one attempt,
// at-most-once; the caller treats any error as a warning.
type Service struct {
	webhookURL  string
	log         *zap.Logger
	client      *http.Client
	customerSvc customerdomain.Service
	outbox      *events.Outbox
	metrics     *metrics.BillingMetrics
	emails      *cache.TTLCache[string, string]
}

func NewService(p Params) notifydomain.Service {
	return &Service{
		webhookURL:  strings.TrimSpace(p.Cfg.NotifyWebhookURL),
		log:         p.Log.Named("notify.service"),
		client:      tracing.WrapHTTPClient(&http.Client{Timeout: p.Cfg.NotifyTimeout}),
		customerSvc: p.CustomerSvc,
		outbox:      p.Outbox,
		metrics:     p.Metrics,
		emails:      cache.NewTTLCache[string, string](),
	}
}

type notification struct {
	Event      string `json:"event"`
	InvoiceID  string `json:"invoice_id"`
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
}

func (s *Service) Notify(ctx context.Context, customerID, invoiceID string) error {
	if s.webhookURL == "" {
		s.metrics.IncNotify("skipped")
		return notifydomain.ErrNotifyDisabled
	}

	email, err := s.recipient(ctx, customerID)
	if err != nil {
		s.metrics.IncNotify("failed")
		return err
	}

	body, err := json.Marshal(notification{
		Event:      events.EventInvoiceNotified,
		InvoiceID:  invoiceID,
		CustomerID: customerID,
		Email:      email,
	})
	if err != nil {
		s.metrics.IncNotify("failed")
		return fmt.Errorf("%w: %v", notifydomain.ErrNotifyFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		s.metrics.IncNotify("failed")
		return fmt.Errorf("%w: %v", notifydomain.ErrNotifyFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.IncNotify("failed")
		return fmt.Errorf("%w: %v", notifydomain.ErrNotifyFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.metrics.IncNotify("failed")
		return fmt.Errorf("%w: webhook returned %d", notifydomain.ErrNotifyFailed, resp.StatusCode)
	}

	s.metrics.IncNotify("sent")
	s.log.Info("invoice notification sent",
		zap.String("invoice_id", invoiceID),
		zap.String("customer_id", customerID),
	)
	if s.outbox != nil {
		_ = s.outbox.Publish(ctx, events.Event{
			Type: events.EventInvoiceNotified,
			Payload: map[string]any{
				"invoice_id":  invoiceID,
				"customer_id": customerID,
			},
			DedupeKey: "invoice.notified:" + invoiceID,
		})
	}
	return nil
}

// recipient resolves the customer's email, caching it briefly so back-to-back
// notifications for the same customer skip a store read.
func (s *Service) recipient(ctx context.Context, customerID string) (string, error) {
	if email, ok := s.emails.Get(customerID); ok {
		return email, nil
	}
	customer, err := s.customerSvc.Get(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", notifydomain.ErrUnknownCustomer, err)
	}
	s.emails.Set(customerID, customer.Email, emailCacheTTL)
	return customer.Email, nil
}
