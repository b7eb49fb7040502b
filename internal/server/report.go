package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/invopond/invopond/internal/report/domain"
)

// parseOptionalTime parses an RFC 3339 or date-only value. Date-only end
// bounds roll forward to the end of that day.
func parseOptionalTime(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		ts = ts.UTC()
		return &ts, nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	ts = ts.UTC()
	if endOfDay {
		ts = ts.Add(24 * time.Hour)
	}
	return &ts, nil
}

// @Summary      Invoice Report
// @Description  Report over all invoices with customer and balance detail
// @Tags         reports
// @Produce      json
// @Param        customer_id  query  string  false  "Customer ID"
// @Param        status       query  string  false  "Status"
// @Param        start_at     query  string  false  "Start (RFC 3339 or YYYY-MM-DD)"
// @Param        end_at       query  string  false  "End (RFC 3339 or YYYY-MM-DD)"
// @Success      200  {object}  []reportdomain.InvoiceReportRow
// @Router       /reports/invoices [get]
func (s *Server) InvoiceReport(c *gin.Context) {
	startAt, err := parseOptionalTime(c.Query("start_at"), false)
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
		return
	}
	endAt, err := parseOptionalTime(c.Query("end_at"), true)
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
		return
	}

	rows, err := s.reportSvc.InvoiceReport(c.Request.Context(), reportdomain.InvoiceReportFilter{
		CustomerID: c.Query("customer_id"),
		Status:     c.Query("status"),
		StartAt:    startAt,
		EndAt:      endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// @Summary      Outstanding Report
// @Description  Invoices still carrying a positive balance
// @Tags         reports
// @Produce      json
// @Success      200  {object}  []reportdomain.OutstandingReportRow
// @Router       /reports/outstanding [get]
func (s *Server) OutstandingReport(c *gin.Context) {
	rows, err := s.reportSvc.OutstandingReport(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}
