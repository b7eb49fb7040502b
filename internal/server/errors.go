package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/invopond/invopond/internal/catalog/domain"
	customerdomain "github.com/invopond/invopond/internal/customer/domain"
	invoicedomain "github.com/invopond/invopond/internal/invoice/domain"
	notifydomain "github.com/invopond/invopond/internal/notify/domain"
	paymentdomain "github.com/invopond/invopond/internal/payment/domain"
)

// APIError is the wire shape of every non-2xx response.
type APIError struct {
	Status int    `json:"-"`
	Code   string `json:"code"`
	Field  string `json:"field,omitempty"`
	Msg    string `json:"message"`
}

func (e *APIError) Error() string { return e.Msg }

var (
	ErrNotFound = &APIError{Status: http.StatusNotFound, Code: "not_found", Msg: "resource not found"}

	ErrTooManyRequests = &APIError{Status: http.StatusTooManyRequests, Code: "rate_limited", Msg: "too many requests"}
)

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Msg: "malformed request body"}
}

func newValidationError(field, code, msg string) *APIError {
	return &APIError{Status: http.StatusUnprocessableEntity, Code: code, Field: field, Msg: msg}
}

// statusByError maps domain sentinels onto HTTP statuses. Anything unmapped
// is a 500.
var statusByError = map[error]int{
	customerdomain.ErrInvalidID:        http.StatusBadRequest,
	customerdomain.ErrInvalidName:      http.StatusUnprocessableEntity,
	customerdomain.ErrInvalidEmail:     http.StatusUnprocessableEntity,
	customerdomain.ErrCustomerNotFound: http.StatusNotFound,

	catalogdomain.ErrInvalidID:          http.StatusBadRequest,
	catalogdomain.ErrInvalidName:        http.StatusUnprocessableEntity,
	catalogdomain.ErrInvalidPrice:       http.StatusUnprocessableEntity,
	catalogdomain.ErrProductNotFound:    http.StatusNotFound,
	catalogdomain.ErrCatalogUnavailable: http.StatusServiceUnavailable,

	invoicedomain.ErrEmptyInvoice:    http.StatusUnprocessableEntity,
	invoicedomain.ErrInvalidCustomer: http.StatusUnprocessableEntity,
	invoicedomain.ErrInvalidLineItem: http.StatusUnprocessableEntity,
	invoicedomain.ErrInvalidID:       http.StatusBadRequest,
	invoicedomain.ErrInvoiceNotFound: http.StatusNotFound,
	invoicedomain.ErrStoreRejected:   http.StatusUnprocessableEntity,

	paymentdomain.ErrInvalidAmount: http.StatusUnprocessableEntity,
	paymentdomain.ErrOverpayment:   http.StatusUnprocessableEntity,
	paymentdomain.ErrAlreadyPaid:   http.StatusConflict,

	notifydomain.ErrNotifyFailed:    http.StatusBadGateway,
	notifydomain.ErrNotifyDisabled:  http.StatusServiceUnavailable,
	notifydomain.ErrUnknownCustomer: http.StatusNotFound,
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	for sentinel, status := range statusByError {
		if errors.Is(err, sentinel) {
			c.AbortWithStatusJSON(status, gin.H{"error": &APIError{
				Status: status,
				Code:   sentinel.Error(),
				Msg:    err.Error(),
			}})
			return
		}
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": &APIError{
		Status: http.StatusInternalServerError,
		Code:   "internal_error",
		Msg:    "internal server error",
	}})
}
