package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/invopond/invopond/internal/audit/domain"
	customerdomain "github.com/invopond/invopond/internal/customer/domain"
)

// auditActor marks API mutations on the audit trail. There is no user system
// in front of this API yet, so everything records as a user action without an
// actor id.
const auditActor = auditdomain.ActorTypeUser

type createCustomerRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	MobileNumber *string `json:"mobile_number"`
}

type updateCustomerRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	MobileNumber *string `json:"mobile_number"`
}

// @Summary      Create Customer
// @Description  Create a new customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body createCustomerRequest true "Create Customer Request"
// @Success      200  {object}  customerdomain.Customer
// @Router       /customers [post]
func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateRequest{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "customer.create", "customer", resp.ID.String(), map[string]any{
		"name":  resp.Name,
		"email": resp.Email,
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Customers
// @Description  List customers
// @Tags         customers
// @Produce      json
// @Param        name   query  string  false  "Name"
// @Param        email  query  string  false  "Email"
// @Success      200  {object}  []customerdomain.Customer
// @Router       /customers [get]
func (s *Server) ListCustomers(c *gin.Context) {
	var query customerdomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Customer
// @Description  Get customer by ID
// @Tags         customers
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  customerdomain.Customer
// @Router       /customers/{id} [get]
func (s *Server) GetCustomer(c *gin.Context) {
	resp, err := s.customerSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Customer
// @Description  Update customer fields
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id       path  string                 true  "Customer ID"
// @Param        request  body  updateCustomerRequest  true  "Update Customer Request"
// @Success      200  {object}  customerdomain.Customer
// @Router       /customers/{id} [patch]
func (s *Server) UpdateCustomer(c *gin.Context) {
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), customerdomain.UpdateRequest{
		ID:           c.Param("id"),
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "customer.update", "customer", resp.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Customer
// @Description  Delete customer by ID
// @Tags         customers
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  map[string]string
// @Router       /customers/{id} [delete]
func (s *Server) DeleteCustomer(c *gin.Context) {
	id := c.Param("id")
	if err := s.customerSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "customer.delete", "customer", id, nil)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// audit records a mutation on the audit trail, swallowing failures so the
// mutation's response is never affected.
func (s *Server) audit(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.Record(c.Request.Context(), auditActor, nil, action, targetType, &targetID, metadata)
}
