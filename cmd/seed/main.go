package main

import (
	"fmt"
	"time"

	"github.com/swadeshika/storefront/internal/config"
	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/logger"
	"github.com/swadeshika/storefront/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	categories := []models.Category{
		{Slug: "handloom", Name: "Handloom & Textiles", SortOrder: 300},
		{Slug: "spices", Name: "Spices & Pantry", SortOrder: 200},
		{Slug: "homeware", Name: "Homeware & Decor", SortOrder: 100},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"handloom", "spices", "homeware"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	products := []models.Product{
		{
			CategoryID:  categoryIDs["handloom"],
			Slug:        "ikat-cotton-saree",
			Title:       "Ikat Cotton Saree",
			Description: "Handwoven double-ikat cotton saree with natural dyes.",
			Images:      models.StringArray([]string{"https://images.unsplash.com/photo-1610030469983-98e550d6193c?w=800"}),
			Tags:        models.StringArray([]string{"handloom", "saree", "ikat"}),
			Status:      constants.ProductStatusActive,
			SortOrder:   300,
			Variants: []models.ProductVariant{
				{
					SKU:        "SAREE-IKAT-IND",
					Title:      "Indigo",
					Attributes: models.JSON(map[string]interface{}{"colour": "indigo"}),
					Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(2499.00)),
					Stock:      12,
					IsActive:   true,
					SortOrder:  200,
				},
				{
					SKU:        "SAREE-IKAT-RUS",
					Title:      "Rust",
					Attributes: models.JSON(map[string]interface{}{"colour": "rust"}),
					Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(2499.00)),
					Stock:      8,
					IsActive:   true,
					SortOrder:  100,
				},
			},
		},
		{
			CategoryID:  categoryIDs["spices"],
			Slug:        "malabar-pepper",
			Title:       "Malabar Black Pepper",
			Description: "Single-estate Tellicherry grade peppercorns.",
			Images:      models.StringArray([]string{"https://images.unsplash.com/photo-1599909533144-f6e1e5f6f873?w=800"}),
			Tags:        models.StringArray([]string{"spice", "pepper"}),
			Status:      constants.ProductStatusActive,
			SortOrder:   200,
			Variants: []models.ProductVariant{
				{
					SKU:        "PEP-MAL-100",
					Title:      "100g",
					Attributes: models.JSON(map[string]interface{}{"weight": "100g"}),
					Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(249.00)),
					Stock:      60,
					IsActive:   true,
					SortOrder:  200,
				},
				{
					SKU:        "PEP-MAL-500",
					Title:      "500g",
					Attributes: models.JSON(map[string]interface{}{"weight": "500g"}),
					Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(999.00)),
					Stock:      25,
					IsActive:   true,
					SortOrder:  100,
				},
			},
		},
		{
			CategoryID:  categoryIDs["homeware"],
			Slug:        "brass-diya-set",
			Title:       "Brass Diya Set",
			Description: "Set of four hand-cast brass oil lamps.",
			Images:      models.StringArray([]string{"https://images.unsplash.com/photo-1604423481263-84e3f1804bae?w=800"}),
			Tags:        models.StringArray([]string{"brass", "decor", "festive"}),
			Status:      constants.ProductStatusActive,
			SortOrder:   100,
			Variants: []models.ProductVariant{
				{
					SKU:        "DIYA-BR-4",
					Title:      "Set of 4",
					Attributes: models.JSON(map[string]interface{}{"count": 4}),
					Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(1299.00)),
					Stock:      20,
					IsActive:   true,
					SortOrder:  100,
				},
			},
		},
		{
			CategoryID:  categoryIDs["homeware"],
			Slug:        "terracotta-planter-sold-out",
			Title:       "Terracotta Planter (Sold Out)",
			Description: "Wheel-thrown terracotta planter, used to demo the out-of-stock state.",
			Images:      models.StringArray([]string{"https://images.unsplash.com/photo-1485955900006-10f4d324d411?w=800"}),
			Tags:        models.StringArray([]string{"terracotta", "planter"}),
			Status:      constants.ProductStatusActive,
			SortOrder:   50,
			Variants: []models.ProductVariant{
				{
					SKU:        "PLNT-TC-M",
					Title:      "Medium",
					Attributes: models.JSON(map[string]interface{}{"size": "medium"}),
					Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(599.00)),
					Stock:      0,
					IsActive:   true,
					SortOrder:  100,
				},
			},
		},
	}

	for _, prod := range products {
		if prod.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category_id missing", prod.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Slug)
			}
		} else {
			existing.Title = prod.Title
			existing.Description = prod.Description
			existing.CategoryID = prod.CategoryID
			existing.Images = prod.Images
			existing.Tags = prod.Tags
			existing.Status = prod.Status
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
				continue
			}
			for _, variant := range prod.Variants {
				var existingVariant models.ProductVariant
				if err := models.DB.Where("sku = ?", variant.SKU).First(&existingVariant).Error; err != nil {
					variant.ProductID = existing.ID
					if err := models.DB.Create(&variant).Error; err != nil {
						stdLog.Printf("Failed to create variant %s: %v", variant.SKU, err)
					}
					continue
				}
				existingVariant.Title = variant.Title
				existingVariant.Attributes = variant.Attributes
				existingVariant.Price = variant.Price
				existingVariant.Stock = variant.Stock
				existingVariant.IsActive = variant.IsActive
				existingVariant.SortOrder = variant.SortOrder
				if err := models.DB.Save(&existingVariant).Error; err != nil {
					stdLog.Printf("Failed to update variant %s: %v", variant.SKU, err)
				}
			}
			stdLog.Printf("Updated product: %s", prod.Slug)
		}
	}

	now := time.Now()
	welcomeExpiry := now.AddDate(0, 2, 0)
	festiveStart := now.Add(-24 * time.Hour)
	festiveExpiry := now.AddDate(0, 0, 14)

	welcome := models.Coupon{
		Code:           "WELCOME100",
		Type:           constants.CouponTypeFixed,
		Value:          models.NewMoneyFromDecimal(decimal.NewFromFloat(100.00)),
		MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(500.00)),
		PerUserLimit:   1,
		ScopeType:      constants.CouponScopeAll,
		ExpiresAt:      &welcomeExpiry,
		IsActive:       true,
	}
	festive := models.Coupon{
		Code:           "FESTIVE10",
		Type:           constants.CouponTypePercent,
		Value:          models.NewMoneyFromDecimal(decimal.NewFromFloat(10)),
		MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(1000.00)),
		MaxDiscount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(300.00)),
		UsageLimit:     200,
		ScopeType:      constants.CouponScopeCategory,
		StartsAt:       &festiveStart,
		ExpiresAt:      &festiveExpiry,
		IsActive:       true,
	}
	if id, ok := categoryIDs["homeware"]; ok {
		festive.SetScopeIDs([]uint{id})
	}

	for _, coupon := range []models.Coupon{welcome, festive} {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&coupon).Error; err != nil {
				stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			} else {
				stdLog.Printf("Created coupon: %s", coupon.Code)
			}
		} else {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
		}
	}

	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to bootstrap default admin: %v", err)
	}

	fmt.Println("\nSeed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 4 Products with variants (one sold out)")
	fmt.Println("- 2 Coupons (fixed + percent)")
	fmt.Println("- Default admin account")
}
