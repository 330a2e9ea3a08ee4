package repository

import (
	"errors"

	"github.com/swadeshika/storefront/internal/models"

	"gorm.io/gorm"
)

// CartRepository is the cart data access interface.
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	GetByUserAndVariant(userID, variantID uint) (*models.CartItem, error)
	Upsert(item *models.CartItem) error
	UpdateQuantity(id uint, quantity int) error
	Delete(id, userID uint) error
	ClearByUser(userID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository is the GORM implementation.
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a cart repository.
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByUser returns the user's cart lines with variants and products.
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Variant").Preload("Variant.Product").
		Where("user_id = ?", userID).Order("id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByUserAndVariant fetches one cart line.
func (r *GormCartRepository) GetByUserAndVariant(userID, variantID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("user_id = ? AND variant_id = ?", userID, variantID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Upsert inserts a cart line or adds to an existing one.
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	existing, err := r.GetByUserAndVariant(item.UserID, item.VariantID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.Create(item).Error
	}
	existing.Quantity += item.Quantity
	*item = *existing
	return r.db.Save(existing).Error
}

// UpdateQuantity sets the quantity on a cart line.
func (r *GormCartRepository) UpdateQuantity(id uint, quantity int) error {
	return r.db.Model(&models.CartItem{}).
		Where("id = ?", id).
		UpdateColumn("quantity", quantity).Error
}

// Delete removes one cart line owned by the user.
func (r *GormCartRepository) Delete(id, userID uint) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{}).Error
}

// ClearByUser removes all cart lines for the user.
func (r *GormCartRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
