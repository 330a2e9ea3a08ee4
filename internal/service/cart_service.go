package service

import (
	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartItemDetail is one cart line resolved against the live catalog.
type CartItemDetail struct {
	ID        uint                   `json:"id"`
	VariantID uint                   `json:"variant_id"`
	ProductID uint                   `json:"product_id"`
	Title     string                 `json:"title"`
	SKU       string                 `json:"sku"`
	UnitPrice models.Money           `json:"unit_price"`
	Quantity  int                    `json:"quantity"`
	LineTotal models.Money           `json:"line_total"`
	Stock     int                    `json:"stock"`
	Variant   *models.ProductVariant `json:"variant,omitempty"`
}

// UpsertCartItemInput adds a variant to a user's cart.
type UpsertCartItemInput struct {
	UserID    uint
	VariantID uint
	Quantity  int
}

// CartService manages per-user cart lines.
type CartService struct {
	cartRepo    repository.CartRepository
	variantRepo repository.ProductVariantRepository
}

// NewCartService creates a cart service.
func NewCartService(cartRepo repository.CartRepository, variantRepo repository.ProductVariantRepository) *CartService {
	return &CartService{cartRepo: cartRepo, variantRepo: variantRepo}
}

// ListByUser returns the cart with current prices. Lines whose variant
// disappeared or was deactivated are dropped from the cart.
func (s *CartService) ListByUser(userID uint) ([]CartItemDetail, error) {
	if userID == 0 {
		return nil, ErrCartItemNotFound
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	details := make([]CartItemDetail, 0, len(items))
	for _, item := range items {
		variant := item.Variant
		if variant == nil || variant.ID == 0 {
			v, err := s.variantRepo.GetByID(item.VariantID)
			if err != nil {
				return nil, err
			}
			variant = v
		}
		if variant == nil || !variant.IsActive || variant.Product == nil || variant.Product.Status != constants.ProductStatusActive {
			_ = s.cartRepo.Delete(item.ID, userID)
			continue
		}

		title := variant.Product.Title
		if variant.Title != "" {
			title = title + " / " + variant.Title
		}
		details = append(details, CartItemDetail{
			ID:        item.ID,
			VariantID: variant.ID,
			ProductID: variant.ProductID,
			Title:     title,
			SKU:       variant.SKU,
			UnitPrice: variant.Price,
			Quantity:  item.Quantity,
			LineTotal: models.NewMoneyFromDecimal(variant.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))),
			Stock:     variant.Stock,
			Variant:   variant,
		})
	}
	return details, nil
}

// UpsertItem adds a variant to the cart or bumps its quantity.
func (s *CartService) UpsertItem(input UpsertCartItemInput) error {
	if input.UserID == 0 || input.VariantID == 0 || input.Quantity <= 0 {
		return ErrInvalidOrderItem
	}
	variant, err := s.variantRepo.GetByID(input.VariantID)
	if err != nil {
		return err
	}
	if variant == nil || !variant.IsActive {
		return ErrProductNotAvailable
	}
	if variant.Product != nil && variant.Product.Status != constants.ProductStatusActive {
		return ErrProductNotAvailable
	}

	existing, err := s.cartRepo.GetByUserAndVariant(input.UserID, input.VariantID)
	if err != nil {
		return err
	}
	wanted := input.Quantity
	if existing != nil {
		wanted += existing.Quantity
	}
	if variant.Stock < wanted {
		return ErrStockInsufficient
	}

	item := &models.CartItem{
		UserID:    input.UserID,
		VariantID: input.VariantID,
		Quantity:  input.Quantity,
	}
	return s.cartRepo.Upsert(item)
}

// UpdateQuantity sets a cart line to an exact quantity.
func (s *CartService) UpdateQuantity(userID, variantID uint, quantity int) error {
	if userID == 0 || variantID == 0 || quantity <= 0 {
		return ErrInvalidOrderItem
	}
	item, err := s.cartRepo.GetByUserAndVariant(userID, variantID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartItemNotFound
	}
	variant, err := s.variantRepo.GetByID(variantID)
	if err != nil {
		return err
	}
	if variant == nil || !variant.IsActive {
		return ErrProductNotAvailable
	}
	if variant.Stock < quantity {
		return ErrStockInsufficient
	}
	return s.cartRepo.UpdateQuantity(item.ID, quantity)
}

// RemoveItem deletes one cart line.
func (s *CartService) RemoveItem(userID, variantID uint) error {
	if userID == 0 || variantID == 0 {
		return ErrInvalidOrderItem
	}
	item, err := s.cartRepo.GetByUserAndVariant(userID, variantID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartItemNotFound
	}
	return s.cartRepo.Delete(item.ID, userID)
}

// Clear empties the user's cart.
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return nil
	}
	return s.cartRepo.ClearByUser(userID)
}
