package service

import (
	"strings"

	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/repository"
)

// AddressInput is a raw address as submitted at checkout.
type AddressInput struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// AddressService resolves submitted addresses to stored rows,
// deduplicating on the normalized field tuple. Stored rows are never
// mutated; a changed address becomes a new row so order references
// stay stable.
type AddressService struct {
	addressRepo repository.AddressRepository
}

// NewAddressService creates an address service.
func NewAddressService(addressRepo repository.AddressRepository) *AddressService {
	return &AddressService{addressRepo: addressRepo}
}

// Resolve normalizes the input, reuses a matching row owned by the
// user, and inserts a new one otherwise.
func (s *AddressService) Resolve(userID uint, input AddressInput) (*models.Address, error) {
	candidate, err := normalizeAddress(userID, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.addressRepo.FindMatch(candidate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if err := s.addressRepo.Create(candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

// ListByUser returns the user's saved addresses.
func (s *AddressService) ListByUser(userID uint) ([]models.Address, error) {
	return s.addressRepo.ListByUser(userID)
}

// normalizeAddress trims and canonicalizes every field so equality on
// the stored tuple is a plain indexed query.
func normalizeAddress(userID uint, input AddressInput) (*models.Address, error) {
	address := &models.Address{
		UserID:     userID,
		Name:       collapseSpaces(input.Name),
		Phone:      strings.ReplaceAll(strings.TrimSpace(input.Phone), " ", ""),
		Line1:      collapseSpaces(input.Line1),
		Line2:      collapseSpaces(input.Line2),
		City:       collapseSpaces(input.City),
		State:      collapseSpaces(input.State),
		PostalCode: strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(input.PostalCode), " ", "")),
		Country:    strings.ToUpper(strings.TrimSpace(input.Country)),
	}
	if address.Country == "" {
		address.Country = "IN"
	}
	if address.Name == "" || address.Phone == "" || address.Line1 == "" ||
		address.City == "" || address.State == "" || address.PostalCode == "" {
		return nil, ErrAddressInvalid
	}
	return address, nil
}

// collapseSpaces trims and squeezes internal whitespace runs.
func collapseSpaces(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
