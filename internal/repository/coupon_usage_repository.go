package repository

import (
	"errors"

	"github.com/swadeshika/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponUsageRepository is the redemption ledger access interface.
type CouponUsageRepository interface {
	Create(usage *models.CouponUsage) (bool, error)
	CountByUser(couponID, userID uint) (int64, error)
	CountByGuestEmail(couponID uint, email string) (int64, error)
	GetByOrderID(orderID uint) (*models.CouponUsage, error)
	DeleteByOrderID(orderID uint) error
	WithTx(tx *gorm.DB) *GormCouponUsageRepository
}

// GormCouponUsageRepository is the GORM implementation.
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewCouponUsageRepository creates a coupon usage repository.
func NewCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormCouponUsageRepository) WithTx(tx *gorm.DB) *GormCouponUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCouponUsageRepository{db: tx}
}

// Create records a redemption. The (coupon_id, order_id) unique index
// makes a replayed insert a no-op; the bool reports whether a new row
// was written.
func (r *GormCouponUsageRepository) Create(usage *models.CouponUsage) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "coupon_id"}, {Name: "order_id"}},
		DoNothing: true,
	}).Create(usage)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountByUser counts the user's redemptions of a coupon.
func (r *GormCouponUsageRepository) CountByUser(couponID, userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByGuestEmail counts guest redemptions keyed on the email.
func (r *GormCouponUsageRepository) CountByGuestEmail(couponID uint, email string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = 0 AND guest_email = ?", couponID, email).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetByOrderID fetches the redemption recorded for an order, if any.
func (r *GormCouponUsageRepository) GetByOrderID(orderID uint) (*models.CouponUsage, error) {
	var usage models.CouponUsage
	err := r.db.Where("order_id = ?", orderID).First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// DeleteByOrderID removes the redemption for an order.
func (r *GormCouponUsageRepository) DeleteByOrderID(orderID uint) error {
	return r.db.Where("order_id = ?", orderID).Delete(&models.CouponUsage{}).Error
}
