package models

import (
	"time"

	"gorm.io/gorm"
)

// Address stores a normalized postal address owned by a user. Rows are
// immutable once referenced by an order; edits insert new rows so order
// snapshots stay stable. The composite index backs the dedup lookup on
// the normalized field tuple.
type Address struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"not null;index:idx_address_dedup,priority:1" json:"user_id"`
	Name       string         `gorm:"type:varchar(120);not null" json:"name"`
	Phone      string         `gorm:"type:varchar(20);not null" json:"phone"`
	Line1      string         `gorm:"type:varchar(255);not null;index:idx_address_dedup,priority:2" json:"line1"`
	Line2      string         `gorm:"type:varchar(255)" json:"line2,omitempty"`
	City       string         `gorm:"type:varchar(120);not null" json:"city"`
	State      string         `gorm:"type:varchar(120);not null" json:"state"`
	PostalCode string         `gorm:"type:varchar(12);not null;index:idx_address_dedup,priority:3" json:"postal_code"`
	Country    string         `gorm:"type:varchar(2);not null;default:'IN'" json:"country"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Address) TableName() string {
	return "addresses"
}
