// Package seed bootstraps demo data for local development.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/invopond/invopond/internal/catalog/domain"
	customerdomain "github.com/invopond/invopond/internal/customer/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const demoCustomerEmail = "demo@invopond.local"

var demoProducts = []struct {
	name  string
	price string
}{
	{"Consulting Hour", "120.00"},
	{"Widget", "19.99"},
	{"Gadget", "9.99"},
}

// EnsureDemoData seeds a demo customer and a small product catalog. Seeding
// is idempotent; existing rows are left untouched.
func EnsureDemoData(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDemoCustomer(ctx, tx, node); err != nil {
			return err
		}
		return ensureDemoProducts(ctx, tx, node)
	})
}

func ensureDemoCustomer(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	err := tx.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Where("email = ?", demoCustomerEmail).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	return tx.WithContext(ctx).Create(&customerdomain.Customer{
		ID:        node.Generate(),
		Name:      "Demo Customer",
		Email:     demoCustomerEmail,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}

func ensureDemoProducts(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, entry := range demoProducts {
		var count int64
		err := tx.WithContext(ctx).
			Model(&catalogdomain.Product{}).
			Where("name = ?", entry.name).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		now := time.Now().UTC()
		err = tx.WithContext(ctx).Create(&catalogdomain.Product{
			ID:        node.Generate(),
			Name:      entry.name,
			Price:     decimal.RequireFromString(entry.price),
			Active:    true,
			Metadata:  datatypes.JSONMap{"seed": true},
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
