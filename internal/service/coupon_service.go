package service

import (
	"strings"
	"time"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponService validates coupon codes against a priced cart.
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
}

// NewCouponService creates a coupon service.
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
	}
}

// couponUserKey identifies the redeemer for per-user limits: the user
// id for members, the email for guests.
type couponUserKey struct {
	UserID     uint
	GuestEmail string
}

// ApplyCoupon runs the validation chain and returns the discount. The
// checks run in a fixed order so the caller always sees the earliest
// failure: existence, active flag, time window, global limit, per-user
// limit, minimum amount, scope.
func (s *CouponService) ApplyCoupon(code string, key couponUserKey, lines []PriceLine) (models.Money, *models.Coupon, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return models.Money{}, nil, ErrCouponInvalid
	}

	coupon, err := s.couponRepo.GetByCode(trimmed)
	if err != nil {
		return models.Money{}, nil, err
	}
	if coupon == nil {
		return models.Money{}, nil, ErrCouponNotFound
	}
	if !coupon.IsActive {
		return models.Money{}, coupon, ErrCouponInactive
	}

	now := time.Now()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return models.Money{}, coupon, ErrCouponNotStarted
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return models.Money{}, coupon, ErrCouponExpired
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return models.Money{}, coupon, ErrCouponUsageLimit
	}

	if coupon.PerUserLimit > 0 {
		var count int64
		if key.UserID != 0 {
			count, err = s.usageRepo.CountByUser(coupon.ID, key.UserID)
		} else if key.GuestEmail != "" {
			count, err = s.usageRepo.CountByGuestEmail(coupon.ID, key.GuestEmail)
		}
		if err != nil {
			return models.Money{}, coupon, err
		}
		if int(count) >= coupon.PerUserLimit {
			return models.Money{}, coupon, ErrCouponPerUserLimit
		}
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(lineTotal(line)).Round(2)
	}
	if subtotal.Cmp(coupon.MinOrderAmount.Decimal) < 0 {
		return models.Money{}, coupon, ErrCouponMinAmount
	}

	eligible, err := eligibleSubtotal(coupon, lines)
	if err != nil {
		return models.Money{}, coupon, err
	}

	discount, err := calculateDiscount(coupon, eligible)
	if err != nil {
		return models.Money{}, coupon, err
	}

	if coupon.MaxDiscount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
		discount = coupon.MaxDiscount.Decimal
	}
	if discount.GreaterThan(eligible) {
		discount = eligible
	}

	return models.NewMoneyFromDecimal(discount), coupon, nil
}

// eligibleSubtotal returns the portion of the cart the coupon applies
// to. A scope of "all" covers everything; product and category scopes
// need at least one matching line.
func eligibleSubtotal(coupon *models.Coupon, lines []PriceLine) (decimal.Decimal, error) {
	scope := strings.ToLower(strings.TrimSpace(coupon.ScopeType))
	if scope == "" || scope == constants.CouponScopeAll {
		total := decimal.Zero
		for _, line := range lines {
			total = total.Add(lineTotal(line)).Round(2)
		}
		return total, nil
	}

	ids := coupon.ScopeIDs()
	if len(ids) == 0 {
		return decimal.Zero, ErrCouponScopeInvalid
	}
	idSet := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	eligible := decimal.Zero
	switch scope {
	case constants.CouponScopeProduct:
		for _, line := range lines {
			if _, ok := idSet[line.ProductID]; ok {
				eligible = eligible.Add(lineTotal(line)).Round(2)
			}
		}
	case constants.CouponScopeCategory:
		for _, line := range lines {
			if _, ok := idSet[line.CategoryID]; ok {
				eligible = eligible.Add(lineTotal(line)).Round(2)
			}
		}
	default:
		return decimal.Zero, ErrCouponScopeInvalid
	}

	if eligible.IsZero() {
		return decimal.Zero, ErrCouponScopeInvalid
	}
	return eligible, nil
}

func calculateDiscount(coupon *models.Coupon, eligible decimal.Decimal) (decimal.Decimal, error) {
	switch strings.ToLower(strings.TrimSpace(coupon.Type)) {
	case constants.CouponTypeFixed:
		if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, ErrCouponInvalid
		}
		return coupon.Value.Decimal.Round(2), nil
	case constants.CouponTypePercent:
		if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, ErrCouponInvalid
		}
		percent := coupon.Value.Decimal.Div(decimal.NewFromInt(100))
		return eligible.Mul(percent).Round(2), nil
	default:
		return decimal.Zero, ErrCouponInvalid
	}
}

func lineTotal(line PriceLine) decimal.Decimal {
	return line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
}
