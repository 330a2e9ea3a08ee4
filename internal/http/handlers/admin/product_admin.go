package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	handlershared "github.com/swadeshika/storefront/internal/http/handlers/shared"
	"github.com/swadeshika/storefront/internal/http/response"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/service"
)

// ProductVariantRequest creates or replaces a product variant.
type ProductVariantRequest struct {
	ID         uint        `json:"id"`
	SKU        string      `json:"sku" binding:"required"`
	Title      string      `json:"title"`
	Attributes models.JSON `json:"attributes"`
	Price      string      `json:"price" binding:"required"`
	Stock      int         `json:"stock"`
	IsActive   *bool       `json:"is_active"`
	SortOrder  int         `json:"sort_order"`
}

// ProductRequest creates or updates a product with its variants.
type ProductRequest struct {
	CategoryID  uint                    `json:"category_id" binding:"required"`
	Slug        string                  `json:"slug" binding:"required"`
	Title       string                  `json:"title" binding:"required"`
	Description string                  `json:"description"`
	Images      []string                `json:"images"`
	Tags        []string                `json:"tags"`
	Status      string                  `json:"status"`
	SortOrder   int                     `json:"sort_order"`
	Variants    []ProductVariantRequest `json:"variants"`
}

// ListProducts returns the catalog including inactive products.
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	categoryID64, _ := strconv.ParseUint(c.Query("category_id"), 10, 32)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListAdmin(uint(categoryID64), search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}

	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProduct returns one product by id, with variants.
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.ProductService.GetByID(id)
	if err != nil {
		respondProductAdminError(c, err)
		return
	}

	response.Success(c, product)
}

// CreateProduct creates a product with its variants.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	product, err := buildProductFromRequest(&req)
	if err != nil {
		respondError(c, response.CodeBadRequest, "variant price invalid", nil)
		return
	}

	if err := h.ProductService.Create(product); err != nil {
		respondProductAdminError(c, err)
		return
	}

	response.Success(c, product)
}

// UpdateProduct updates a product and replaces its variants.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	product, err := buildProductFromRequest(&req)
	if err != nil {
		respondError(c, response.CodeBadRequest, "variant price invalid", nil)
		return
	}
	product.ID = id
	for i := range product.Variants {
		product.Variants[i].ProductID = id
	}

	if err := h.ProductService.Update(product); err != nil {
		respondProductAdminError(c, err)
		return
	}

	response.Success(c, product)
}

// CategoryRequest creates a category.
type CategoryRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// ListCategories returns all categories.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.ProductService.ListCategories()
	if err != nil {
		respondError(c, response.CodeInternal, "category list failed", err)
		return
	}

	response.Success(c, categories)
}

// CreateCategory creates a category.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	category := &models.Category{
		Slug:      strings.TrimSpace(req.Slug),
		Name:      strings.TrimSpace(req.Name),
		SortOrder: req.SortOrder,
	}
	if err := h.CategoryRepo.Create(category); err != nil {
		respondError(c, response.CodeInternal, "category create failed", err)
		return
	}

	response.Success(c, category)
}

func buildProductFromRequest(req *ProductRequest) (*models.Product, error) {
	product := &models.Product{
		CategoryID:  req.CategoryID,
		Slug:        strings.TrimSpace(req.Slug),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Images:      models.StringArray(req.Images),
		Tags:        models.StringArray(req.Tags),
		Status:      req.Status,
		SortOrder:   req.SortOrder,
	}
	for _, v := range req.Variants {
		price, err := models.NewMoneyFromString(v.Price)
		if err != nil {
			return nil, err
		}
		variant := models.ProductVariant{
			ID:         v.ID,
			SKU:        strings.TrimSpace(v.SKU),
			Title:      v.Title,
			Attributes: v.Attributes,
			Price:      price,
			Stock:      v.Stock,
			IsActive:   true,
			SortOrder:  v.SortOrder,
		}
		if v.IsActive != nil {
			variant.IsActive = *v.IsActive
		}
		product.Variants = append(product.Variants, variant)
	}
	return product, nil
}

func respondProductAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "product not found", nil)
	case errors.Is(err, service.ErrProductNotAvailable):
		respondError(c, response.CodeBadRequest, "product invalid", nil)
	default:
		respondError(c, response.CodeInternal, "product operation failed", err)
	}
}
