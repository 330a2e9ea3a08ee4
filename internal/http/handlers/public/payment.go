package public

import (
	"errors"
	"sort"

	"github.com/gin-gonic/gin"

	handlershared "github.com/swadeshika/storefront/internal/http/handlers/shared"
	"github.com/swadeshika/storefront/internal/http/response"
	"github.com/swadeshika/storefront/internal/service"
)

const razorpaySignatureHeader = "X-Razorpay-Signature"

// ListPaymentMethods returns the methods checkout can pay through.
func (h *Handler) ListPaymentMethods(c *gin.Context) {
	methods := h.GatewayRegistry.Methods()
	sort.Strings(methods)
	response.Success(c, gin.H{"methods": methods})
}

// VerifyPayment settles a client-side payment callback.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req service.VerifyPaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	order, err := h.PaymentService.VerifyPayment(req)
	if err != nil {
		respondPaymentVerifyError(c, err)
		return
	}

	response.Success(c, order)
}

// PaymentWebhook settles gateway-to-server notifications. The raw body
// is needed for signature verification, so no JSON binding here.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, response.CodeBadRequest, "webhook body unreadable", err)
		return
	}

	signature := c.GetHeader(razorpaySignatureHeader)
	if err := h.PaymentService.HandleWebhook(body, signature); err != nil {
		switch {
		case errors.Is(err, service.ErrGatewayUnavailable):
			respondError(c, response.CodeInternal, "gateway not configured", nil)
		case errors.Is(err, service.ErrPaymentVerifyFailed):
			respondError(c, response.CodeBadRequest, "webhook signature invalid", nil)
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		default:
			respondError(c, response.CodeInternal, "webhook processing failed", err)
		}
		return
	}

	response.Success(c, gin.H{"processed": true})
}

// GetOrderPayment returns the latest payment row for one of the
// caller's orders.
func (h *Handler) GetOrderPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrderByUser(c.Param("order_no"), uid)
	if err != nil {
		respondOrderFetchError(c, err)
		return
	}

	paymentRow, err := h.PaymentService.GetPaymentByOrder(order.ID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			respondError(c, response.CodeNotFound, "payment not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "payment fetch failed", err)
		return
	}

	response.Success(c, paymentRow)
}

// ListAddresses returns the caller's saved addresses.
func (h *Handler) ListAddresses(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	addresses, err := h.AddressService.ListByUser(uid)
	if err != nil {
		handlershared.RespondError(c, response.CodeInternal, "address list failed", err)
		return
	}

	response.Success(c, addresses)
}
