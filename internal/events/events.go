package events

// Billing event types recorded in the outbox.
const (
	EventInvoiceCreated  = "invoice.created"
	EventInvoiceNotified = "invoice.notified"
	EventPaymentSettled  = "payment.settled"
)

// InvoiceCreatedPayload captures the data downstream feeds need for a new
// invoice.
type InvoiceCreatedPayload struct {
	InvoiceID   string `json:"invoice_id"`
	CustomerID  string `json:"customer_id"`
	TotalAmount string `json:"total_amount"`
	LineItems   int    `json:"line_items"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p InvoiceCreatedPayload) ToMap() map[string]any {
	return map[string]any{
		"invoice_id":   p.InvoiceID,
		"customer_id":  p.CustomerID,
		"total_amount": p.TotalAmount,
		"line_items":   p.LineItems,
	}
}

// PaymentSettledPayload captures a recorded payment against an invoice.
type PaymentSettledPayload struct {
	PaymentID  string `json:"payment_id"`
	InvoiceID  string `json:"invoice_id"`
	CustomerID string `json:"customer_id"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p PaymentSettledPayload) ToMap() map[string]any {
	return map[string]any{
		"payment_id":  p.PaymentID,
		"invoice_id":  p.InvoiceID,
		"customer_id": p.CustomerID,
		"amount":      p.Amount,
		"status":      p.Status,
	}
}
