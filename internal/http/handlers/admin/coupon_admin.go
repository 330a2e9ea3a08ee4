package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	handlershared "github.com/swadeshika/storefront/internal/http/handlers/shared"
	"github.com/swadeshika/storefront/internal/http/response"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/repository"
	"github.com/swadeshika/storefront/internal/service"
)

// CouponRequest creates or updates a coupon.
type CouponRequest struct {
	Code           string     `json:"code" binding:"required"`
	Type           string     `json:"type" binding:"required"`
	Value          string     `json:"value" binding:"required"`
	MinOrderAmount string     `json:"min_order_amount"`
	MaxDiscount    string     `json:"max_discount"`
	UsageLimit     int        `json:"usage_limit"`
	PerUserLimit   int        `json:"per_user_limit"`
	ScopeType      string     `json:"scope_type"`
	ScopeRefIDs    []uint     `json:"scope_ref_ids"`
	StartsAt       *time.Time `json:"starts_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
	IsActive       *bool      `json:"is_active"`
}

// ListCoupons returns coupons, paginated.
func (h *Handler) ListCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}

	coupons, total, err := h.CouponAdminService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "coupon list failed", err)
		return
	}

	response.SuccessWithPage(c, coupons, response.BuildPagination(page, pageSize, total))
}

// GetCoupon returns one coupon by id.
func (h *Handler) GetCoupon(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	coupon, err := h.CouponAdminService.Get(id)
	if err != nil {
		respondCouponAdminError(c, err)
		return
	}

	response.Success(c, coupon)
}

// CreateCoupon creates a coupon.
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	coupon, err := buildCouponFromRequest(&req)
	if err != nil {
		respondError(c, response.CodeBadRequest, "coupon amounts invalid", nil)
		return
	}

	if err := h.CouponAdminService.Create(coupon); err != nil {
		respondCouponAdminError(c, err)
		return
	}

	response.Success(c, coupon)
}

// UpdateCoupon updates a coupon in place.
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	coupon, err := buildCouponFromRequest(&req)
	if err != nil {
		respondError(c, response.CodeBadRequest, "coupon amounts invalid", nil)
		return
	}
	coupon.ID = id

	if err := h.CouponAdminService.Update(coupon); err != nil {
		respondCouponAdminError(c, err)
		return
	}

	response.Success(c, coupon)
}

// DeleteCoupon soft-deletes a coupon.
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.CouponAdminService.Delete(id); err != nil {
		respondCouponAdminError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func buildCouponFromRequest(req *CouponRequest) (*models.Coupon, error) {
	value, err := models.NewMoneyFromString(req.Value)
	if err != nil {
		return nil, err
	}
	minAmount, err := moneyOrZero(req.MinOrderAmount)
	if err != nil {
		return nil, err
	}
	maxDiscount, err := moneyOrZero(req.MaxDiscount)
	if err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		Code:           req.Code,
		Type:           req.Type,
		Value:          value,
		MinOrderAmount: minAmount,
		MaxDiscount:    maxDiscount,
		UsageLimit:     req.UsageLimit,
		PerUserLimit:   req.PerUserLimit,
		ScopeType:      req.ScopeType,
		StartsAt:       req.StartsAt,
		ExpiresAt:      req.ExpiresAt,
		IsActive:       true,
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if len(req.ScopeRefIDs) > 0 {
		coupon.SetScopeIDs(req.ScopeRefIDs)
	}
	return coupon, nil
}

func moneyOrZero(raw string) (models.Money, error) {
	if strings.TrimSpace(raw) == "" {
		return models.Money{}, nil
	}
	return models.NewMoneyFromString(raw)
}

func respondCouponAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		respondError(c, response.CodeNotFound, "coupon not found", nil)
	case errors.Is(err, service.ErrCouponInvalid):
		respondError(c, response.CodeBadRequest, "coupon invalid", nil)
	case errors.Is(err, service.ErrCouponScopeInvalid):
		respondError(c, response.CodeBadRequest, "coupon scope invalid", nil)
	default:
		respondError(c, response.CodeInternal, "coupon operation failed", err)
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id64 == 0 {
		respondError(c, response.CodeBadRequest, "id invalid", nil)
		return 0, false
	}
	return uint(id64), true
}
