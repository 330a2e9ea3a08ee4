package repository

import (
	"errors"

	"github.com/swadeshika/storefront/internal/models"

	"gorm.io/gorm"
)

// AddressRepository is the address data access interface.
type AddressRepository interface {
	GetByID(id uint) (*models.Address, error)
	GetByIDAndUser(id, userID uint) (*models.Address, error)
	FindMatch(candidate *models.Address) (*models.Address, error)
	Create(address *models.Address) error
	ListByUser(userID uint) ([]models.Address, error)
	WithTx(tx *gorm.DB) *GormAddressRepository
}

// GormAddressRepository is the GORM implementation.
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository creates an address repository.
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormAddressRepository) WithTx(tx *gorm.DB) *GormAddressRepository {
	if tx == nil {
		return r
	}
	return &GormAddressRepository{db: tx}
}

// GetByID fetches an address by id.
func (r *GormAddressRepository) GetByID(id uint) (*models.Address, error) {
	var address models.Address
	if err := r.db.First(&address, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// GetByIDAndUser fetches an address owned by the user.
func (r *GormAddressRepository) GetByIDAndUser(id, userID uint) (*models.Address, error) {
	var address models.Address
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// FindMatch looks up an existing row with the same normalized field
// tuple as the candidate. The candidate must already be normalized.
func (r *GormAddressRepository) FindMatch(candidate *models.Address) (*models.Address, error) {
	var address models.Address
	err := r.db.Where(
		"user_id = ? AND name = ? AND phone = ? AND line1 = ? AND line2 = ? AND city = ? AND state = ? AND postal_code = ? AND country = ?",
		candidate.UserID,
		candidate.Name,
		candidate.Phone,
		candidate.Line1,
		candidate.Line2,
		candidate.City,
		candidate.State,
		candidate.PostalCode,
		candidate.Country,
	).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// Create inserts an address.
func (r *GormAddressRepository) Create(address *models.Address) error {
	return r.db.Create(address).Error
}

// ListByUser returns the user's addresses, newest first.
func (r *GormAddressRepository) ListByUser(userID uint) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("user_id = ?", userID).Order("id desc").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}
