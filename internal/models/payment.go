package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment records one gateway settlement attempt for an order.
type Payment struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	OrderID        uint           `gorm:"index;not null" json:"order_id"`
	Method         string         `gorm:"not null" json:"method"`
	Amount         Money          `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency       string         `gorm:"not null" json:"currency"`
	Status         string         `gorm:"index;not null" json:"status"`
	GatewayOrderID string         `gorm:"index;type:varchar(64)" json:"gateway_order_id,omitempty"`
	GatewayPayload JSON           `gorm:"type:json" json:"gateway_payload"`
	PaymentRef     string         `gorm:"index;type:varchar(64)" json:"payment_ref,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`
	PaidAt         *time.Time     `gorm:"index" json:"paid_at"`
	CallbackAt     *time.Time     `gorm:"index" json:"callback_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Payment) TableName() string {
	return "payments"
}
