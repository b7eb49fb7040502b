package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/invopond/invopond/internal/customer/domain"
	"github.com/invopond/invopond/internal/clock"
	invoicedomain "github.com/invopond/invopond/internal/invoice/domain"
	reportdomain "github.com/invopond/invopond/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p Params) reportdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("report.service"),
		clock: p.Clock,
	}
}

// invoiceWithCustomer joins the customer name onto an invoice row.
type invoiceWithCustomer struct {
	invoicedomain.Invoice
	CustomerName string
}

func (s *Service) InvoiceReport(ctx context.Context, filter reportdomain.InvoiceReportFilter) ([]reportdomain.InvoiceReportRow, error) {
	query := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("invoices.*, customers.name AS customer_name").
		Joins("LEFT JOIN customers ON customers.id = invoices.customer_id")

	if customerID := strings.TrimSpace(filter.CustomerID); customerID != "" {
		id, err := snowflake.ParseString(customerID)
		if err != nil {
			return nil, customerdomain.ErrInvalidID
		}
		query = query.Where("invoices.customer_id = ?", id)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("invoices.status = ?", strings.ToUpper(status))
	}
	if filter.StartAt != nil {
		query = query.Where("invoices.created_at >= ?", filter.StartAt.UTC())
	}
	if filter.EndAt != nil {
		query = query.Where("invoices.created_at < ?", filter.EndAt.UTC())
	}

	var rows []invoiceWithCustomer
	if err := query.Order("invoices.created_at DESC, invoices.id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	report := make([]reportdomain.InvoiceReportRow, 0, len(rows))
	for _, row := range rows {
		report = append(report, reportdomain.InvoiceReportRow{
			InvoiceID:         row.ID.String(),
			CustomerID:        row.CustomerID.String(),
			CustomerName:      row.CustomerName,
			Status:            string(row.Status),
			InvoiceDate:       row.CreatedAt,
			DueAt:             row.DueAt,
			TotalAmount:       row.TotalAmount,
			PaidAmount:        row.PaidAmount,
			OutstandingAmount: row.Outstanding(),
		})
	}
	return report, nil
}

// OutstandingReport filters in memory rather than comparing numerics in SQL,
// so decimal semantics stay with the decimal package.
func (s *Service) OutstandingReport(ctx context.Context) ([]reportdomain.OutstandingReportRow, error) {
	var rows []invoiceWithCustomer
	err := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("invoices.*, customers.name AS customer_name").
		Joins("LEFT JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.status <> ?", invoicedomain.InvoiceStatusPaid).
		Order("invoices.due_at ASC, invoices.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	report := make([]reportdomain.OutstandingReportRow, 0, len(rows))
	for _, row := range rows {
		outstanding := row.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}
		report = append(report, reportdomain.OutstandingReportRow{
			InvoiceID:         row.ID.String(),
			CustomerID:        row.CustomerID.String(),
			CustomerName:      row.CustomerName,
			DueAt:             row.DueAt,
			Overdue:           row.DueAt.Before(now),
			OutstandingAmount: outstanding,
		})
	}
	return report, nil
}
