package public

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/swadeshika/storefront/internal/http/response"
	"github.com/swadeshika/storefront/internal/service"
)

// GetCart returns the signed-in user's cart with current prices.
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.CartService.ListByUser(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}

	response.Success(c, gin.H{"items": items})
}

// UpsertCartItemRequest adds quantity to a cart line.
type UpsertCartItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// AddCartItem adds a variant to the cart.
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req UpsertCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	err := h.CartService.UpsertItem(service.UpsertCartItemInput{
		UserID:    uid,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, gin.H{"added": true})
}

// UpdateCartItemRequest sets an exact line quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// UpdateCartItem sets the quantity of one cart line.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	variantID64, err := strconv.ParseUint(c.Param("variant_id"), 10, 32)
	if err != nil || variantID64 == 0 {
		respondError(c, response.CodeBadRequest, "variant id invalid", nil)
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.CartService.UpdateQuantity(uid, uint(variantID64), req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, gin.H{"updated": true})
}

// RemoveCartItem deletes one cart line.
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	variantID64, err := strconv.ParseUint(c.Param("variant_id"), 10, 32)
	if err != nil || variantID64 == 0 {
		respondError(c, response.CodeBadRequest, "variant id invalid", nil)
		return
	}

	if err := h.CartService.RemoveItem(uid, uint(variantID64)); err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, gin.H{"removed": true})
}

// ClearCart deletes every cart line.
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.CartService.Clear(uid); err != nil {
		respondError(c, response.CodeInternal, "cart clear failed", err)
		return
	}

	response.Success(c, gin.H{"cleared": true})
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVariantInvalid):
		respondError(c, response.CodeBadRequest, "variant invalid", nil)
	case errors.Is(err, service.ErrProductNotAvailable):
		respondError(c, response.CodeBadRequest, "product not available", nil)
	case errors.Is(err, service.ErrStockInsufficient):
		respondError(c, response.CodeBadRequest, "stock insufficient", nil)
	case errors.Is(err, service.ErrCartItemNotFound):
		respondError(c, response.CodeNotFound, "cart item not found", nil)
	default:
		respondError(c, response.CodeInternal, "cart update failed", err)
	}
}
