package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem snapshots one settled line: title, SKU and unit price are
// copied from the catalog at order time and never re-read.
type OrderItem struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	OrderID        uint           `gorm:"index;not null" json:"order_id"`
	ProductID      uint           `gorm:"index;not null" json:"product_id"`
	VariantID      uint           `gorm:"index;not null" json:"variant_id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	SKU            string         `gorm:"type:varchar(64);not null" json:"sku"`
	UnitPrice      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	Quantity       int            `gorm:"not null" json:"quantity"`
	TotalPrice     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`
	CouponDiscount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"coupon_discount"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (OrderItem) TableName() string {
	return "order_items"
}
