package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant is the sellable unit: one SKU with its own price and
// stock. Stock is decremented with a guarded UPDATE at order time and
// restored on cancellation.
type ProductVariant struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	ProductID  uint           `gorm:"not null;index;uniqueIndex:idx_variant_sku" json:"product_id"`
	SKU        string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_variant_sku" json:"sku"`
	Title      string         `gorm:"type:varchar(255)" json:"title"`
	Attributes JSON           `gorm:"type:json" json:"attributes"`
	Price      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	Stock      int            `gorm:"not null;default:0" json:"stock"`
	IsActive   bool           `gorm:"default:true;index" json:"is_active"`
	SortOrder  int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName sets the table name.
func (ProductVariant) TableName() string {
	return "product_variants"
}
