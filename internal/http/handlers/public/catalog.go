package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	handlershared "github.com/swadeshika/storefront/internal/http/handlers/shared"
	"github.com/swadeshika/storefront/internal/http/response"
	"github.com/swadeshika/storefront/internal/service"
)

// ListProducts returns the active catalog, paginated.
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	categoryID64, _ := strconv.ParseUint(c.Query("category_id"), 10, 32)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListPublic(uint(categoryID64), search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}

	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProduct returns one active product by slug, with variants.
func (h *Handler) GetProduct(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	product, err := h.ProductService.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	response.Success(c, product)
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
