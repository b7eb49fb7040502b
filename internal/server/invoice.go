package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/invopond/invopond/internal/invoice/domain"
	paymentdomain "github.com/invopond/invopond/internal/payment/domain"
)

type generateInvoiceRequest struct {
	CustomerID string                          `json:"customer_id"`
	Items      []invoicedomain.LineItemRequest `json:"items"`
}

type recordPaymentRequest struct {
	Amount    string  `json:"amount"`
	Method    string  `json:"method"`
	Reference *string `json:"reference"`
}

// @Summary      Generate Invoice
// @Description  Generate an invoice from catalog-priced line items
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body generateInvoiceRequest true "Generate Invoice Request"
// @Success      200  {object}  invoicedomain.GenerateResult
// @Router       /invoices [post]
func (s *Server) GenerateInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.invoiceSvc.Generate(c.Request.Context(), invoicedomain.GenerateRequest{
		CustomerID: strings.TrimSpace(req.CustomerID),
		Items:      req.Items,
	})
	if err != nil {
		// Surface the rejection detail alongside the error when the whole
		// request failed line item validation.
		if len(result.Rejected) > 0 {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"error": &APIError{
					Status: http.StatusUnprocessableEntity,
					Code:   err.Error(),
					Msg:    "no valid line items",
				},
				"rejected": result.Rejected,
			})
			return
		}
		AbortWithError(c, err)
		return
	}

	s.audit(c, "invoice.generate", "invoice", result.Invoice.ID.String(), map[string]any{
		"customer_id":  result.Invoice.CustomerID.String(),
		"total_amount": result.Invoice.TotalAmount.String(),
		"rejected":     len(result.Rejected),
	})
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// @Summary      List Invoices
// @Description  List invoices, optionally filtered by customer or status
// @Tags         invoices
// @Produce      json
// @Param        customer_id  query  string  false  "Customer ID"
// @Param        status       query  string  false  "Status"
// @Success      200  {object}  []invoicedomain.Invoice
// @Router       /invoices [get]
func (s *Server) ListInvoices(c *gin.Context) {
	var query invoicedomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Invoice
// @Description  Get invoice by ID with its line items
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id} [get]
func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Record Payment
// @Description  Record a payment against an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Invoice ID"
// @Param        request  body  recordPaymentRequest  true  "Record Payment Request"
// @Success      200  {object}  paymentdomain.RecordResult
// @Router       /invoices/{id}/payments [post]
func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "amount must be a decimal string"))
		return
	}

	result, err := s.paymentSvc.Record(c.Request.Context(), paymentdomain.RecordRequest{
		InvoiceID: c.Param("id"),
		Amount:    amount,
		Method:    strings.TrimSpace(req.Method),
		Reference: req.Reference,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "payment.record", "invoice", result.Invoice.ID.String(), map[string]any{
		"payment_id": result.Payment.ID.String(),
		"amount":     result.Payment.Amount.String(),
		"status":     string(result.Invoice.Status),
	})
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// @Summary      List Invoice Payments
// @Description  List payments recorded against an invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  []paymentdomain.Payment
// @Router       /invoices/{id}/payments [get]
func (s *Server) ListInvoicePayments(c *gin.Context) {
	resp, err := s.paymentSvc.ListByInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
