package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/swadeshika/storefront/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T, tables ...interface{}) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(tables...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func createVariant(t *testing.T, db *gorm.DB, sku string, stock int) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ProductID: 1,
		SKU:       sku,
		Title:     "test variant",
		Price:     mustMoney(t, "249.00"),
		Stock:     stock,
		IsActive:  true,
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	return variant
}

func mustMoney(t *testing.T, value string) models.Money {
	t.Helper()
	m, err := models.NewMoneyFromString(value)
	if err != nil {
		t.Fatalf("parse money %q: %v", value, err)
	}
	return m
}

func variantStockValue(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var variant models.ProductVariant
	if err := db.First(&variant, id).Error; err != nil {
		t.Fatalf("load variant failed: %v", err)
	}
	return variant.Stock
}

func TestDecrementStockGuard(t *testing.T) {
	db := openRepositoryTestDB(t, &models.ProductVariant{})
	repo := NewProductVariantRepository(db)
	variant := createVariant(t, db, "PEP-MAL-100", 3)

	ok, err := repo.DecrementStock(variant.ID, 2)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected decrement within stock to succeed")
	}
	if got := variantStockValue(t, db, variant.ID); got != 1 {
		t.Fatalf("stock = %d, want 1", got)
	}

	ok, err = repo.DecrementStock(variant.ID, 2)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if ok {
		t.Fatalf("expected decrement past stock to report false")
	}
	if got := variantStockValue(t, db, variant.ID); got != 1 {
		t.Fatalf("guarded decrement must not change stock, got %d", got)
	}
}

func TestRestoreStock(t *testing.T) {
	db := openRepositoryTestDB(t, &models.ProductVariant{})
	repo := NewProductVariantRepository(db)
	variant := createVariant(t, db, "DIYA-BR-4", 5)

	ok, err := repo.DecrementStock(variant.ID, 5)
	if err != nil || !ok {
		t.Fatalf("decrement failed, ok=%v err=%v", ok, err)
	}
	if err := repo.RestoreStock(variant.ID, 5); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if got := variantStockValue(t, db, variant.ID); got != 5 {
		t.Fatalf("stock = %d, want 5", got)
	}
}

func TestListByIDsSkipsMissing(t *testing.T) {
	db := openRepositoryTestDB(t, &models.ProductVariant{})
	repo := NewProductVariantRepository(db)
	first := createVariant(t, db, "SAREE-IKAT-IND", 2)
	second := createVariant(t, db, "SAREE-IKAT-RUS", 4)

	variants, err := repo.ListByIDs([]uint{first.ID, second.ID, 9999})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(variants))
	}
}
