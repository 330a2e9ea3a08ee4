package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/swadeshika/storefront/internal/constants"
	handlershared "github.com/swadeshika/storefront/internal/http/handlers/shared"
	"github.com/swadeshika/storefront/internal/http/response"
	"github.com/swadeshika/storefront/internal/repository"
	"github.com/swadeshika/storefront/internal/service"
)

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrderRequest creates an order for the signed-in user.
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" binding:"required"`
	CouponCode      string                 `json:"coupon_code"`
	PaymentMethod   string                 `json:"payment_method" binding:"required"`
	ShippingAddress service.AddressInput   `json:"shipping_address" binding:"required"`
	BillingAddress  *service.AddressInput  `json:"billing_address"`
	Remark          string                 `json:"remark"`
}

// PreviewOrder quotes the settlement without persisting anything.
func (h *Handler) PreviewOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	preview, err := h.OrderService.PreviewOrder(c.Request.Context(), service.CreateOrderInput{
		UserID:          uid,
		Items:           buildOrderItems(req.Items),
		CouponCode:      req.CouponCode,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		ClientIP:        c.ClientIP(),
	})
	if err != nil {
		respondOrderPreviewError(c, err)
		return
	}

	response.Success(c, preview)
}

// CreateOrder settles the cart into a persisted order.
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.OrderService.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		UserID:          uid,
		Items:           buildOrderItems(req.Items),
		CouponCode:      req.CouponCode,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Remark:          req.Remark,
		ClientIP:        c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, service.ErrGatewayUnavailable) && result != nil {
			// The order was persisted and can be paid later.
			response.ErrorWithData(c, response.CodeInternal, "payment initialization failed", result)
			return
		}
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, result)
}

// CreateGuestOrderRequest creates an order identified by email only.
type CreateGuestOrderRequest struct {
	Email           string                       `json:"email" binding:"required"`
	Items           []OrderItemRequest           `json:"items" binding:"required"`
	CouponCode      string                       `json:"coupon_code"`
	PaymentMethod   string                       `json:"payment_method" binding:"required"`
	ShippingAddress service.AddressInput         `json:"shipping_address" binding:"required"`
	BillingAddress  *service.AddressInput        `json:"billing_address"`
	Remark          string                       `json:"remark"`
	CaptchaPayload  service.CaptchaVerifyPayload `json:"captcha_payload"`
}

// CreateGuestOrder settles a guest checkout.
func (h *Handler) CreateGuestOrder(c *gin.Context) {
	var req CreateGuestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.CaptchaService.Verify(constants.CaptchaSceneGuestCreateOrder, req.CaptchaPayload); err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaRequired):
			respondError(c, response.CodeBadRequest, "captcha required", nil)
		case errors.Is(err, service.ErrCaptchaInvalid):
			respondError(c, response.CodeBadRequest, "captcha invalid", nil)
		default:
			respondError(c, response.CodeInternal, "captcha verification failed", err)
		}
		return
	}

	result, err := h.OrderService.CreateGuestOrder(c.Request.Context(), service.CreateGuestOrderInput{
		Email:           req.Email,
		Items:           buildOrderItems(req.Items),
		CouponCode:      req.CouponCode,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Remark:          req.Remark,
		ClientIP:        c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, service.ErrGatewayUnavailable) && result != nil {
			response.ErrorWithData(c, response.CodeInternal, "payment initialization failed", result)
			return
		}
		respondGuestOrderCreateError(c, err)
		return
	}

	response.Success(c, result)
}

// ListOrders returns the signed-in user's orders, paginated.
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListOrdersByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder returns one of the signed-in user's orders.
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrderByUser(c.Param("order_no"), uid)
	if err != nil {
		respondOrderFetchError(c, err)
		return
	}

	response.Success(c, order)
}

// CancelOrder cancels an unfulfilled order owned by the caller.
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.CancelOrder(c.Param("order_no"), uid)
	if err != nil {
		respondOrderCancelError(c, err)
		return
	}

	response.Success(c, order)
}

// GuestOrderLookupRequest identifies a guest order.
type GuestOrderLookupRequest struct {
	OrderNo string `json:"order_no" binding:"required"`
	Email   string `json:"email" binding:"required"`
}

// LookupGuestOrder returns a guest order by number and email.
func (h *Handler) LookupGuestOrder(c *gin.Context) {
	var req GuestOrderLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	order, err := h.OrderService.GetOrderByGuest(req.OrderNo, req.Email)
	if err != nil {
		respondOrderFetchError(c, err)
		return
	}

	response.Success(c, order)
}

// CancelGuestOrder cancels an unfulfilled guest order.
func (h *Handler) CancelGuestOrder(c *gin.Context) {
	var req GuestOrderLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	order, err := h.OrderService.CancelGuestOrder(req.OrderNo, req.Email)
	if err != nil {
		respondOrderCancelError(c, err)
		return
	}

	response.Success(c, order)
}

func buildOrderItems(items []OrderItemRequest) []service.CreateOrderItem {
	result := make([]service.CreateOrderItem, 0, len(items))
	for _, item := range items {
		result = append(result, service.CreateOrderItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return result
}

func respondOrderFetchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrInvalidEmail):
		respondError(c, response.CodeBadRequest, "email invalid", nil)
	default:
		respondError(c, response.CodeInternal, "order fetch failed", err)
	}
}

func respondOrderCancelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrOrderCancelNotAllowed):
		respondError(c, response.CodeBadRequest, "order can no longer be cancelled", nil)
	case errors.Is(err, service.ErrInvalidEmail):
		respondError(c, response.CodeBadRequest, "email invalid", nil)
	default:
		respondError(c, response.CodeInternal, "order cancel failed", err)
	}
}
