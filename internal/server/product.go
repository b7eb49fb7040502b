package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/invopond/invopond/internal/catalog/domain"
)

type createProductRequest struct {
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Price       string         `json:"price"`
	Active      *bool          `json:"active"`
	Metadata    map[string]any `json:"metadata"`
}

type updateProductRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Price       *string        `json:"price"`
	Metadata    map[string]any `json:"metadata"`
}

// parsePrice accepts prices as strings so amounts like "19.99" survive the
// wire without float rounding.
func parsePrice(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(raw))
}

// @Summary      Create Product
// @Description  Create a catalog product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body createProductRequest true "Create Product Request"
// @Success      200  {object}  catalogdomain.Product
// @Router       /products [post]
func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		AbortWithError(c, newValidationError("price", "invalid_price", "price must be a decimal string"))
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateRequest{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       price,
		Active:      req.Active,
		Metadata:    req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "product.create", "product", resp.ID.String(), map[string]any{
		"name":  resp.Name,
		"price": resp.Price.String(),
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Products
// @Description  List catalog products
// @Tags         products
// @Produce      json
// @Param        name    query  string  false  "Name"
// @Param        active  query  bool    false  "Active"
// @Success      200  {object}  []catalogdomain.Product
// @Router       /products [get]
func (s *Server) ListProducts(c *gin.Context) {
	var query catalogdomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Product
// @Description  Get product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  catalogdomain.Product
// @Router       /products/{id} [get]
func (s *Server) GetProduct(c *gin.Context) {
	resp, err := s.catalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Product
// @Description  Update product fields
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Product ID"
// @Param        request  body  updateProductRequest  true  "Update Product Request"
// @Success      200  {object}  catalogdomain.Product
// @Router       /products/{id} [patch]
func (s *Server) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := catalogdomain.UpdateRequest{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			AbortWithError(c, newValidationError("price", "invalid_price", "price must be a decimal string"))
			return
		}
		update.Price = &price
	}

	resp, err := s.catalogSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "product.update", "product", resp.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Archive Product
// @Description  Archive product by ID; archived products no longer resolve
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  catalogdomain.Product
// @Router       /products/{id} [delete]
func (s *Server) ArchiveProduct(c *gin.Context) {
	resp, err := s.catalogSvc.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "product.archive", "product", resp.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
