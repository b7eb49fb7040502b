// Package relay drains the billing event outbox to an external webhook feed.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/invopond/invopond/internal/config"
	"github.com/invopond/invopond/internal/events"
	"github.com/invopond/invopond/internal/observability/metrics"
	"github.com/invopond/invopond/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cfg     config.Config
	Metrics *metrics.BillingMetrics
	Config  Config `optional:"true"`
}

// Worker periodically delivers undispatched billing events. Delivery is
// best-effort: a failed batch stays in the outbox and is retried on the next
// tick.
type Worker struct {
	db         *gorm.DB
	log        *zap.Logger
	metrics    *metrics.BillingMetrics
	cfg        Config
	webhookURL string
	client     *http.Client
}

func NewWorker(p Params) *Worker {
	cfg := p.Config.withDefaults()
	return &Worker{
		db:         p.DB,
		log:        p.Log.Named("events.relay"),
		metrics:    p.Metrics,
		cfg:        cfg,
		webhookURL: strings.TrimSpace(p.Cfg.EventsWebhookURL),
		client:     tracing.WrapHTTPClient(&http.Client{Timeout: cfg.PostTimeout}),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("billing event relay run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	if w.db == nil {
		return errors.New("relay_worker_unavailable")
	}
	ctx, cancel := context.WithTimeout(ctx, w.cfg.DrainTimeout)
	defer cancel()

	var pending []events.BillingEvent
	err := w.db.WithContext(ctx).
		Where("dispatched_at IS NULL").
		Order("created_at ASC").
		Limit(w.cfg.BatchSize).
		Find(&pending).Error
	if err != nil {
		return err
	}

	var backlog int64
	if err := w.db.WithContext(ctx).Model(&events.BillingEvent{}).Where("dispatched_at IS NULL").Count(&backlog).Error; err == nil {
		w.metrics.SetOutboxBacklog(int(backlog))
	}

	for _, event := range pending {
		if err := w.deliver(ctx, event); err != nil {
			w.log.Warn("billing event delivery failed",
				zap.String("event_id", event.ID.String()),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			return err
		}
		now := time.Now().UTC()
		if err := w.db.WithContext(ctx).Model(&events.BillingEvent{}).
			Where("id = ?", event.ID).
			Update("dispatched_at", now).Error; err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) deliver(ctx context.Context, event events.BillingEvent) error {
	// No feed configured; mark-as-dispatched keeps the outbox bounded.
	if w.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"id":         event.ID.String(),
		"type":       event.EventType,
		"payload":    map[string]any(event.Payload),
		"created_at": event.CreatedAt,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("events webhook returned status %d", resp.StatusCode)
	}
	return nil
}
