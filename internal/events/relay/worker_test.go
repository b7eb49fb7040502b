package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invopond/invopond/internal/events"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRelayTest(t *testing.T) (*gorm.DB, *events.Outbox) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&events.BillingEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(6)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	return db, events.NewOutbox(db, node)
}

func newTestWorker(db *gorm.DB, webhookURL string) *Worker {
	return &Worker{
		db:         db,
		log:        zap.NewNop(),
		cfg:        DefaultConfig(),
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: time.Second},
	}
}

func TestRunOnceMarksDispatchedWithoutFeed(t *testing.T) {
	db, outbox := setupRelayTest(t)
	ctx := context.Background()

	err := outbox.Publish(ctx, events.Event{
		Type:    events.EventInvoiceCreated,
		Payload: map[string]any{"invoice_id": "1"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	worker := newTestWorker(db, "")
	if err := worker.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	var pending int64
	if err := db.Model(&events.BillingEvent{}).Where("dispatched_at IS NULL").Count(&pending).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != 0 {
		t.Fatalf("expected no pending events, got %d", pending)
	}
}

func TestRunOnceDeliversToWebhook(t *testing.T) {
	db, outbox := setupRelayTest(t)
	ctx := context.Background()

	var received []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode event: %v", err)
		}
		received = append(received, body)
	}))
	defer server.Close()

	for i := 0; i < 3; i++ {
		err := outbox.Publish(ctx, events.Event{
			Type:    events.EventPaymentSettled,
			Payload: map[string]any{"payment_id": fmt.Sprint(i)},
		})
		if err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	worker := newTestWorker(db, server.URL)
	if err := worker.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(received) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(received))
	}
	if received[0]["type"] != events.EventPaymentSettled {
		t.Fatalf("unexpected event type %v", received[0]["type"])
	}
}

func TestConfigDerivesDrainTimeout(t *testing.T) {
	cfg := Config{}.withDefaults()
	if want := time.Duration(cfg.BatchSize) * cfg.PostTimeout; cfg.DrainTimeout != want {
		t.Fatalf("expected derived drain timeout %s, got %s", want, cfg.DrainTimeout)
	}
	explicit := Config{DrainTimeout: time.Minute}.withDefaults()
	if explicit.DrainTimeout != time.Minute {
		t.Fatalf("expected explicit drain timeout kept, got %s", explicit.DrainTimeout)
	}
}

func TestRunOnceDrainOutlastsPollInterval(t *testing.T) {
	db, outbox := setupRelayTest(t)
	ctx := context.Background()

	var delivered int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(60 * time.Millisecond)
		delivered++
	}))
	defer server.Close()

	for i := 0; i < 2; i++ {
		err := outbox.Publish(ctx, events.Event{
			Type:    events.EventInvoiceCreated,
			Payload: map[string]any{"invoice_id": fmt.Sprint(i)},
		})
		if err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	// Two slow posts take well past the poll interval; the drain timeout has
	// to cover the whole batch.
	worker := newTestWorker(db, server.URL)
	worker.cfg = Config{PollInterval: 20 * time.Millisecond, PostTimeout: time.Second}.withDefaults()
	if err := worker.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %d", delivered)
	}

	var pending int64
	if err := db.Model(&events.BillingEvent{}).Where("dispatched_at IS NULL").Count(&pending).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != 0 {
		t.Fatalf("expected no pending events, got %d", pending)
	}
}

func TestRunOnceKeepsEventOnDeliveryFailure(t *testing.T) {
	db, outbox := setupRelayTest(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := outbox.Publish(ctx, events.Event{
		Type:    events.EventInvoiceCreated,
		Payload: map[string]any{"invoice_id": "1"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	worker := newTestWorker(db, server.URL)
	if err := worker.RunOnce(ctx); err == nil {
		t.Fatal("expected delivery error")
	}

	var pending int64
	if err := db.Model(&events.BillingEvent{}).Where("dispatched_at IS NULL").Count(&pending).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != 1 {
		t.Fatalf("expected event to stay pending, got %d pending", pending)
	}
}
