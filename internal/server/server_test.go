package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/invopond/invopond/internal/catalog/domain"
	catalogservice "github.com/invopond/invopond/internal/catalog/service"
	"github.com/invopond/invopond/internal/clock"
	"github.com/invopond/invopond/internal/config"
	customerdomain "github.com/invopond/invopond/internal/customer/domain"
	customerservice "github.com/invopond/invopond/internal/customer/service"
	"github.com/invopond/invopond/internal/events"
	invoicedomain "github.com/invopond/invopond/internal/invoice/domain"
	invoiceservice "github.com/invopond/invopond/internal/invoice/service"
	paymentdomain "github.com/invopond/invopond/internal/payment/domain"
	paymentservice "github.com/invopond/invopond/internal/payment/service"
	reportservice "github.com/invopond/invopond/internal/report/service"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&customerdomain.Customer{},
		&catalogdomain.Product{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
		&events.BillingEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(4)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	log := zap.NewNop()
	clk := clock.Fixed(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	customerSvc := customerservice.NewService(customerservice.Params{In: fx.In{}, DB: db, Log: log, GenID: node})
	catalogSvc := catalogservice.NewService(catalogservice.Params{In: fx.In{}, DB: db, Log: log, GenID: node})
	builder := invoiceservice.NewBuilder(invoiceservice.BuilderParams{In: fx.In{}, Log: log, CatalogSvc: catalogSvc})
	invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
		In: fx.In{}, DB: db, Log: log, GenID: node, Clock: clk, Builder: builder,
	})
	paymentSvc := paymentservice.NewService(paymentservice.Params{
		In: fx.In{}, DB: db, Log: log, GenID: node, Clock: clk,
	})
	reportSvc := reportservice.NewService(reportservice.Params{In: fx.In{}, DB: db, Log: log, Clock: clk})

	srv := NewServer(Params{
		In:          fx.In{},
		Cfg:         config.Config{ServiceName: "invopond", ServiceVersion: "test"},
		Log:         log,
		DB:          db,
		CustomerSvc: customerSvc,
		CatalogSvc:  catalogSvc,
		InvoiceSvc:  invoiceSvc,
		PaymentSvc:  paymentSvc,
		ReportSvc:   reportSvc,
	})

	engine := gin.New()
	srv.RegisterRoutes(engine)
	return engine, db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return envelope.Data
}

func TestInvoiceFlowOverHTTP(t *testing.T) {
	engine, _ := setupTestServer(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/customers", map[string]any{
		"name":  "Acme Corp",
		"email": "billing@acme.test",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create customer: status %d body %s", rec.Code, rec.Body.String())
	}
	customerID := dataField(t, rec)["id"].(string)

	rec = doJSON(t, engine, http.MethodPost, "/api/products", map[string]any{
		"name":  "Widget",
		"price": "19.99",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create product: status %d body %s", rec.Code, rec.Body.String())
	}
	productID := dataField(t, rec)["id"].(string)

	rec = doJSON(t, engine, http.MethodPost, "/api/invoices", map[string]any{
		"customer_id": customerID,
		"items": []map[string]any{
			{"product_id": productID, "quantity": 3},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate invoice: status %d body %s", rec.Code, rec.Body.String())
	}
	result := dataField(t, rec)
	invoice := result["invoice"].(map[string]any)
	if invoice["status"] != "PENDING" {
		t.Fatalf("expected PENDING, got %v", invoice["status"])
	}
	if invoice["total_amount"] != "59.97" {
		t.Fatalf("expected total 59.97, got %v", invoice["total_amount"])
	}
	invoiceID := invoice["id"].(string)

	rec = doJSON(t, engine, http.MethodPost, "/api/invoices/"+invoiceID+"/payments", map[string]any{
		"amount": "59.97",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("record payment: status %d body %s", rec.Code, rec.Body.String())
	}
	paid := dataField(t, rec)["invoice"].(map[string]any)
	if paid["status"] != "PAID" {
		t.Fatalf("expected PAID, got %v", paid["status"])
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/reports/outstanding", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("outstanding report: status %d body %s", rec.Code, rec.Body.String())
	}
	var listEnvelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listEnvelope); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(listEnvelope.Data) != 0 {
		t.Fatalf("expected empty outstanding report, got %v", listEnvelope.Data)
	}
}

func TestGenerateInvoiceEmptyItemsReturns422(t *testing.T) {
	engine, db := setupTestServer(t)

	customer := customerdomain.Customer{Name: "Acme", Email: "a@b.test"}
	customer.ID = snowflake.ID(7000000000000001)
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/invoices", map[string]any{
		"customer_id": customer.ID.String(),
		"items":       []map[string]any{},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestGetInvoiceNotFoundReturns404(t *testing.T) {
	engine, _ := setupTestServer(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/invoices/123456789012345678", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestRecordPaymentRejectsBadAmount(t *testing.T) {
	engine, _ := setupTestServer(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/invoices/123456789012345678/payments", map[string]any{
		"amount": "not-a-number",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestOverpaymentReturns422(t *testing.T) {
	engine, db := setupTestServer(t)

	node, err := snowflake.NewNode(5)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	invoice := invoicedomain.Invoice{
		ID:          node.Generate(),
		CustomerID:  node.Generate(),
		Status:      invoicedomain.InvoiceStatusPending,
		TotalAmount: decimal.RequireFromString("10.00"),
		PaidAmount:  decimal.Zero,
		DueAt:       time.Now().UTC().Add(24 * time.Hour),
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payments", map[string]any{
		"amount": "10.01",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body %s", rec.Code, rec.Body.String())
	}
}
