package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookingplatform/backend/internal/domain/catalog"
)

// CatalogQueries is the read and delete surface of the canonical catalog
type CatalogQueries interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListInternalProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	ListByOwner(ctx context.Context, owner int64) ([]catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductHandler serves the canonical product catalog
type ProductHandler struct {
	BaseHandler
	catalog CatalogQueries
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(queries CatalogQueries) *ProductHandler {
	return &ProductHandler{catalog: queries}
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// ListInternal handles GET /products/internal
func (h *ProductHandler) ListInternal(c *gin.Context) {
	products, err := h.catalog.ListInternalProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetByID handles GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListByOwner handles GET /products/owner/:ownerId
func (h *ProductHandler) ListByOwner(c *gin.Context) {
	owner, ok := h.pathID(c, "ownerId")
	if !ok {
		return
	}
	products, err := h.catalog.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// ListCategories handles GET /categories
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

func (h *ProductHandler) pathID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, param+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// RegisterRoutes registers the product and category routes under the API group
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.GET("", h.List)
	products.GET("/internal", h.ListInternal)
	products.GET("/owner/:ownerId", h.ListByOwner)
	products.GET("/:id", h.GetByID)
	products.DELETE("/:id", h.Delete)

	rg.GET("/categories", h.ListCategories)
}
