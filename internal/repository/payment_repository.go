package repository

import (
	"errors"

	"github.com/swadeshika/storefront/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository is the payment record access interface.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByGatewayOrderID(gatewayOrderID string) (*models.Payment, error)
	GetLatestByOrderID(orderID uint) (*models.Payment, error)
	Update(payment *models.Payment) error
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository is the GORM implementation.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a payment repository.
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create inserts a payment record.
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByGatewayOrderID fetches the payment for a gateway order id.
func (r *GormPaymentRepository) GetByGatewayOrderID(gatewayOrderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("gateway_order_id = ?", gatewayOrderID).
		Order("id desc").First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetLatestByOrderID fetches the most recent payment for an order.
func (r *GormPaymentRepository) GetLatestByOrderID(orderID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("order_id = ?", orderID).Order("id desc").First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// Update saves a payment record.
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}
