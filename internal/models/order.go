package models

import (
	"time"

	"gorm.io/gorm"
)

// Order table. Money columns denormalize the server-side settlement
// breakdown; address columns reference immutable address rows so the
// order keeps a stable snapshot.
type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	OrderNo           string         `gorm:"uniqueIndex;not null" json:"order_no"`
	UserID            uint           `gorm:"index;not null" json:"user_id,omitempty"`
	GuestEmail        string         `gorm:"index" json:"guest_email,omitempty"`
	Status            string         `gorm:"index;not null" json:"status"`
	Currency          string         `gorm:"not null" json:"currency"`
	Subtotal          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`
	ShippingFee       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`
	TaxAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`
	DiscountAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`
	TotalAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	CouponID          *uint          `gorm:"index" json:"coupon_id,omitempty"`
	CouponCode        string         `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	PaymentMethod     string         `gorm:"type:varchar(20);not null" json:"payment_method"`
	GatewayOrderID    string         `gorm:"index;type:varchar(64)" json:"gateway_order_id,omitempty"`
	PaymentID         string         `gorm:"type:varchar(64)" json:"payment_id,omitempty"`
	ShippingAddressID uint           `gorm:"not null" json:"shipping_address_id"`
	BillingAddressID  uint           `gorm:"not null" json:"billing_address_id"`
	Remark            string         `gorm:"type:varchar(500)" json:"remark,omitempty"`
	ClientIP          string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`
	ExpiresAt         *time.Time     `gorm:"index" json:"expires_at"`
	PaidAt            *time.Time     `gorm:"index" json:"paid_at"`
	ShippedAt         *time.Time     `json:"shipped_at"`
	DeliveredAt       *time.Time     `json:"delivered_at"`
	CancelledAt       *time.Time     `gorm:"index" json:"cancelled_at"`
	ReturnedAt        *time.Time     `json:"returned_at"`
	RefundedAt        *time.Time     `json:"refunded_at"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	ShippingAddress *Address    `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"`
	BillingAddress  *Address    `gorm:"foreignKey:BillingAddressID" json:"billing_address,omitempty"`
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
