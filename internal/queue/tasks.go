package queue

import (
	"encoding/json"

	"github.com/swadeshika/storefront/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusEmail notifies the buyer of a status change.
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskOrderExpireCancel cancels an unpaid order after its deadline.
	TaskOrderExpireCancel = constants.TaskOrderExpireCancel
)

// OrderStatusEmailPayload carries the order status email task.
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// OrderExpireCancelPayload carries the expiry cancellation task.
type OrderExpireCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderStatusEmailTask builds the status email task.
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEmail, body), nil
}

// NewOrderExpireCancelTask builds the expiry cancellation task.
func NewOrderExpireCancelTask(payload OrderExpireCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderExpireCancel, body), nil
}
