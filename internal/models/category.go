package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups products for browsing and coupon scoping.
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	Name      string         `gorm:"type:varchar(120);not null" json:"name"`
	Icon      string         `gorm:"type:varchar(500)" json:"icon"`
	SortOrder int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Category) TableName() string {
	return "categories"
}
