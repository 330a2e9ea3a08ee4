package repository

import "time"

// ProductListFilter filters product listings.
type ProductListFilter struct {
	Page       int
	PageSize   int
	CategoryID uint
	Search     string
	OnlyActive bool
}

// OrderListFilter filters order listings.
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	GuestEmail  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CouponListFilter filters coupon listings.
type CouponListFilter struct {
	Page     int
	PageSize int
	Code     string
	IsActive *bool
}
