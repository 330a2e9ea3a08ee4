package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Coupon table. Value holds a rupee amount for fixed coupons and a
// percentage for percent coupons. UsageLimit/PerUserLimit of 0 mean
// unlimited.
type Coupon struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Code           string         `gorm:"uniqueIndex;not null" json:"code"`
	Type           string         `gorm:"not null" json:"type"`
	Value          Money          `gorm:"type:decimal(20,2);not null" json:"value"`
	MinOrderAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"`
	MaxDiscount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"`
	UsageLimit     int            `gorm:"not null;default:0" json:"usage_limit"`
	UsedCount      int            `gorm:"not null;default:0" json:"used_count"`
	PerUserLimit   int            `gorm:"not null;default:0" json:"per_user_limit"`
	ScopeType      string         `gorm:"not null;default:'all'" json:"scope_type"`
	ScopeRefIDs    string         `gorm:"type:text" json:"scope_ref_ids"`
	StartsAt       *time.Time     `gorm:"index" json:"starts_at"`
	ExpiresAt      *time.Time     `gorm:"index" json:"expires_at"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Coupon) TableName() string {
	return "coupons"
}

// ScopeIDs decodes the JSON id list behind ScopeRefIDs. An empty or
// malformed list is treated as no restriction.
func (c *Coupon) ScopeIDs() []uint {
	if c.ScopeRefIDs == "" {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(c.ScopeRefIDs), &ids); err != nil {
		return nil
	}
	return ids
}

// SetScopeIDs encodes the id list into ScopeRefIDs.
func (c *Coupon) SetScopeIDs(ids []uint) {
	if len(ids) == 0 {
		c.ScopeRefIDs = ""
		return
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	c.ScopeRefIDs = string(data)
}
