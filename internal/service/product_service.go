package service

import (
	"strings"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/repository"
)

// ProductService serves the catalog.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a product service.
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{productRepo: productRepo, categoryRepo: categoryRepo}
}

// ListPublic returns active products for the storefront.
func (s *ProductService) ListPublic(categoryID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: categoryID,
		Search:     strings.TrimSpace(search),
		OnlyActive: true,
	}
	return s.productRepo.List(filter)
}

// GetPublicBySlug returns one active product with its variants.
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if product == nil || product.Status != constants.ProductStatusActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin returns all products regardless of status.
func (s *ProductService) ListAdmin(categoryID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: categoryID,
		Search:     strings.TrimSpace(search),
		OnlyActive: false,
	}
	return s.productRepo.List(filter)
}

// GetByID returns a product for admin use.
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create inserts a product with its variants.
func (s *ProductService) Create(product *models.Product) error {
	if product.Slug == "" || product.Title == "" {
		return ErrProductNotAvailable
	}
	if product.Status == "" {
		product.Status = constants.ProductStatusActive
	}
	return s.productRepo.Create(product)
}

// Update saves a product.
func (s *ProductService) Update(product *models.Product) error {
	return s.productRepo.Update(product)
}

// ListCategories returns all categories ordered for display.
func (s *ProductService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.List()
}
