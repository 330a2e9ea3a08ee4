package service

import (
	"encoding/json"
	"strings"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/repository"
)

// CouponAdminService manages coupons from the admin surface.
type CouponAdminService struct {
	couponRepo repository.CouponRepository
}

// NewCouponAdminService creates a coupon admin service.
func NewCouponAdminService(couponRepo repository.CouponRepository) *CouponAdminService {
	return &CouponAdminService{couponRepo: couponRepo}
}

// List returns a coupon page.
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.couponRepo.List(filter)
}

// Get returns one coupon.
func (s *CouponAdminService) Get(id uint) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Create validates and stores a new coupon.
func (s *CouponAdminService) Create(coupon *models.Coupon) error {
	if err := normalizeCoupon(coupon); err != nil {
		return err
	}
	existing, err := s.couponRepo.GetByCode(coupon.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrCouponInvalid
	}
	return s.couponRepo.Create(coupon)
}

// Update validates and saves a coupon.
func (s *CouponAdminService) Update(coupon *models.Coupon) error {
	if coupon.ID == 0 {
		return ErrCouponNotFound
	}
	if err := normalizeCoupon(coupon); err != nil {
		return err
	}
	return s.couponRepo.Update(coupon)
}

// Delete removes a coupon. Past usages are kept for order history.
func (s *CouponAdminService) Delete(id uint) error {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}
	return s.couponRepo.Delete(id)
}

func normalizeCoupon(coupon *models.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if coupon.Code == "" {
		return ErrCouponInvalid
	}
	switch coupon.Type {
	case constants.CouponTypeFixed, constants.CouponTypePercent:
	default:
		return ErrCouponInvalid
	}
	if !coupon.Value.Decimal.IsPositive() {
		return ErrCouponInvalid
	}
	switch coupon.ScopeType {
	case "", constants.CouponScopeAll:
		coupon.ScopeType = constants.CouponScopeAll
		coupon.ScopeRefIDs = ""
	case constants.CouponScopeProduct, constants.CouponScopeCategory:
		ids := coupon.ScopeIDs()
		if len(ids) == 0 {
			return ErrCouponScopeInvalid
		}
		encoded, err := json.Marshal(ids)
		if err != nil {
			return ErrCouponScopeInvalid
		}
		coupon.ScopeRefIDs = string(encoded)
	default:
		return ErrCouponScopeInvalid
	}
	if coupon.StartsAt != nil && coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(*coupon.StartsAt) {
		return ErrCouponInvalid
	}
	return nil
}
