package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/invopond/invopond/internal/audit"
	"github.com/invopond/invopond/internal/catalog"
	"github.com/invopond/invopond/internal/clock"
	"github.com/invopond/invopond/internal/config"
	"github.com/invopond/invopond/internal/customer"
	"github.com/invopond/invopond/internal/events"
	"github.com/invopond/invopond/internal/events/relay"
	"github.com/invopond/invopond/internal/invoice"
	"github.com/invopond/invopond/internal/migration"
	"github.com/invopond/invopond/internal/notify"
	"github.com/invopond/invopond/internal/observability"
	"github.com/invopond/invopond/internal/payment"
	"github.com/invopond/invopond/internal/report"
	"github.com/invopond/invopond/internal/seed"
	"github.com/invopond/invopond/internal/server"
	"github.com/invopond/invopond/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(func() (*snowflake.Node, error) {
			return snowflake.NewNode(1)
		}),
		clock.Module,
		db.Module,
		fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.SeedDemoData {
				return seed.EnsureDemoData(conn, node)
			}
			return nil
		}),
		events.Module,
		relay.Module,
		audit.Module,
		customer.Module,
		catalog.Module,
		invoice.Module,
		payment.Module,
		notify.Module,
		report.Module,
		server.Module,
	)
	app.Run()
}
