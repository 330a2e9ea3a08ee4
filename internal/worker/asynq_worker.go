package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/swadeshika/storefront/internal/logger"
	"github.com/swadeshika/storefront/internal/provider"
	"github.com/swadeshika/storefront/internal/queue"
	"github.com/swadeshika/storefront/internal/service"
)

// Consumer handles background tasks enqueued by the order flow.
type Consumer struct {
	container *provider.Container
}

// NewConsumer creates a task consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{container: c}
}

// Register binds task types to handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskOrderExpireCancel, c.handleOrderExpireCancel)
}

func (c *Consumer) handleOrderStatusEmail(ctx context.Context, task *asynq.Task) error {
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode order status email payload: %w", err)
	}

	order, err := c.container.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		return fmt.Errorf("load order %d: %w", payload.OrderID, err)
	}
	if order == nil {
		logger.Warnw("order status email skipped, order missing",
			"order_id", payload.OrderID)
		return nil
	}

	receiver := order.GuestEmail
	isGuest := order.UserID == 0
	if !isGuest {
		user, err := c.container.UserRepo.GetByID(order.UserID)
		if err != nil {
			return fmt.Errorf("load user %d: %w", order.UserID, err)
		}
		if user == nil {
			logger.Warnw("order status email skipped, user missing",
				"order_id", order.ID, "user_id", order.UserID)
			return nil
		}
		receiver = user.Email
	}
	if receiver == "" {
		logger.Warnw("order status email skipped, no receiver",
			"order_id", order.ID)
		return nil
	}

	err = c.container.EmailService.SendOrderStatusEmail(receiver, service.OrderStatusEmailInput{
		OrderNo:  order.OrderNo,
		Status:   payload.Status,
		Amount:   order.TotalAmount,
		Currency: order.Currency,
		IsGuest:  isGuest,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailServiceDisabled) ||
			errors.Is(err, service.ErrEmailServiceNotConfigured) {
			logger.Debugw("order status email skipped",
				"order_no", order.OrderNo, "reason", err)
			return nil
		}
		if errors.Is(err, service.ErrInvalidEmail) ||
			errors.Is(err, service.ErrEmailRecipientRejected) {
			logger.Warnw("order status email dropped",
				"order_no", order.OrderNo, "error", err)
			return nil
		}
		return fmt.Errorf("send order status email %s: %w", order.OrderNo, err)
	}

	logger.Debugw("order status email sent",
		"order_no", order.OrderNo, "status", payload.Status)
	return nil
}

func (c *Consumer) handleOrderExpireCancel(ctx context.Context, task *asynq.Task) error {
	var payload queue.OrderExpireCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode order expire payload: %w", err)
	}

	order, err := c.container.OrderService.CancelExpiredOrder(payload.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("expire cancel skipped, order missing",
				"order_id", payload.OrderID)
			return nil
		}
		return fmt.Errorf("cancel expired order %d: %w", payload.OrderID, err)
	}
	if order != nil {
		logger.Debugw("expire cancel processed",
			"order_no", order.OrderNo, "status", order.Status)
	}
	return nil
}
