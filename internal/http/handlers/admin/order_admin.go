package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/swadeshika/storefront/internal/constants"
	handlershared "github.com/swadeshika/storefront/internal/http/handlers/shared"
	"github.com/swadeshika/storefront/internal/http/response"
	"github.com/swadeshika/storefront/internal/repository"
	"github.com/swadeshika/storefront/internal/service"
)

// ListOrders returns orders across all buyers, paginated and filtered.
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	userID64, _ := strconv.ParseUint(c.Query("user_id"), 10, 32)
	filter := repository.OrderListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     uint(userID64),
		Status:     strings.TrimSpace(c.Query("status")),
		OrderNo:    strings.TrimSpace(c.Query("order_no")),
		GuestEmail: strings.TrimSpace(c.Query("guest_email")),
	}
	if from := parseQueryTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseQueryTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}

	orders, total, err := h.OrderService.ListOrdersForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder returns one order by number.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.OrderService.GetOrderForAdmin(c.Param("order_no"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	response.Success(c, order)
}

// UpdateOrderStatusRequest moves an order along the status machine.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var adminSettableStatuses = map[string]bool{
	constants.OrderStatusConfirmed:  true,
	constants.OrderStatusProcessing: true,
	constants.OrderStatusShipped:    true,
	constants.OrderStatusDelivered:  true,
	constants.OrderStatusCancelled:  true,
	constants.OrderStatusReturned:   true,
	constants.OrderStatusRefunded:   true,
}

// UpdateOrderStatus applies a privileged status transition.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !adminSettableStatuses[status] {
		respondError(c, response.CodeBadRequest, "status unknown", nil)
		return
	}

	order, err := h.OrderService.UpdateOrderStatus(c.Param("order_no"), status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "status transition not allowed", nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", err)
		}
		return
	}

	response.Success(c, order)
}

func parseQueryTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}
