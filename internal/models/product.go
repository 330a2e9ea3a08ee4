package models

import (
	"time"

	"gorm.io/gorm"
)

// Product catalog table. Selling prices and stock live on variants; the
// product row carries the shared listing data.
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Images      StringArray    `gorm:"type:json" json:"images"`
	Tags        StringArray    `gorm:"type:json" json:"tags"`
	Status      string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Category Category         `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}
