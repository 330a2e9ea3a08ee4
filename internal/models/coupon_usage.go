package models

import (
	"time"

	"gorm.io/gorm"
)

// CouponUsage records one redemption per order. The unique index makes
// recording idempotent when a commit is retried. Guest redemptions key
// per-user limits on the guest email with UserID 0.
type CouponUsage struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	CouponID       uint           `gorm:"not null;uniqueIndex:idx_coupon_usage_order" json:"coupon_id"`
	OrderID        uint           `gorm:"not null;uniqueIndex:idx_coupon_usage_order" json:"order_id"`
	UserID         uint           `gorm:"index;not null" json:"user_id"`
	GuestEmail     string         `gorm:"index" json:"guest_email,omitempty"`
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
