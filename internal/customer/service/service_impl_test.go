package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/invopond/invopond/internal/customer/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCustomerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&customerdomain.Customer{}); err != nil {
		t.Fatalf("migrate customers: %v", err)
	}
	return db
}

func newCustomerService(t *testing.T, db *gorm.DB) customerdomain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	return &Service{db: db, log: zap.NewNop(), genID: node}
}

func TestCreateCustomer(t *testing.T) {
	svc := newCustomerService(t, setupCustomerTestDB(t))

	customer, err := svc.Create(context.Background(), customerdomain.CreateRequest{
		Name:  "Acme Ltd",
		Email: "billing@acme.test",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if customer.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if customer.Name != "Acme Ltd" {
		t.Fatalf("expected name Acme Ltd, got %q", customer.Name)
	}
}

func TestCreateCustomerRejectsBadEmail(t *testing.T) {
	svc := newCustomerService(t, setupCustomerTestDB(t))

	for _, email := range []string{"", "no-at-sign", "@leading", "trailing@", "two words@x"} {
		_, err := svc.Create(context.Background(), customerdomain.CreateRequest{Name: "A", Email: email})
		if !errors.Is(err, customerdomain.ErrInvalidEmail) {
			t.Fatalf("email %q: expected ErrInvalidEmail, got %v", email, err)
		}
	}
}

func TestDeleteUnknownCustomer(t *testing.T) {
	svc := newCustomerService(t, setupCustomerTestDB(t))

	err := svc.Delete(context.Background(), "123456789")
	if !errors.Is(err, customerdomain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestUpdateCustomerPartial(t *testing.T) {
	svc := newCustomerService(t, setupCustomerTestDB(t))
	ctx := context.Background()

	customer, err := svc.Create(ctx, customerdomain.CreateRequest{Name: "Acme", Email: "a@acme.test"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	email := "finance@acme.test"
	updated, err := svc.Update(ctx, customerdomain.UpdateRequest{ID: customer.ID.String(), Email: &email})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != email {
		t.Fatalf("expected email %q, got %q", email, updated.Email)
	}
	if updated.Name != "Acme" {
		t.Fatalf("expected name unchanged, got %q", updated.Name)
	}
}
