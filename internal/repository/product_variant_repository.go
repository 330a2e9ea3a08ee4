package repository

import (
	"errors"

	"github.com/swadeshika/storefront/internal/models"

	"gorm.io/gorm"
)

// ProductVariantRepository is the variant data access interface.
type ProductVariantRepository interface {
	GetByID(id uint) (*models.ProductVariant, error)
	ListByIDs(ids []uint) ([]models.ProductVariant, error)
	DecrementStock(id uint, quantity int) (bool, error)
	RestoreStock(id uint, quantity int) error
	WithTx(tx *gorm.DB) *GormProductVariantRepository
}

// GormProductVariantRepository is the GORM implementation.
type GormProductVariantRepository struct {
	db *gorm.DB
}

// NewProductVariantRepository creates a variant repository.
func NewProductVariantRepository(db *gorm.DB) *GormProductVariantRepository {
	return &GormProductVariantRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormProductVariantRepository) WithTx(tx *gorm.DB) *GormProductVariantRepository {
	if tx == nil {
		return r
	}
	return &GormProductVariantRepository{db: tx}
}

// GetByID fetches a variant with its product.
func (r *GormProductVariantRepository) GetByID(id uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.Preload("Product").First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// ListByIDs fetches variants with their products.
func (r *GormProductVariantRepository) ListByIDs(ids []uint) ([]models.ProductVariant, error) {
	if len(ids) == 0 {
		return []models.ProductVariant{}, nil
	}
	var variants []models.ProductVariant
	if err := r.db.Preload("Product").Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// DecrementStock takes quantity units off the shelf with a guarded
// UPDATE. It reports false when stock was insufficient.
func (r *GormProductVariantRepository) DecrementStock(id uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return true, nil
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RestoreStock puts quantity units back after a cancellation.
func (r *GormProductVariantRepository) RestoreStock(id uint, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return r.db.Model(&models.ProductVariant{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).Error
}
