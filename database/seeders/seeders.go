// Package seeders loads starter data: the signature catalog and an admin
// account for the back office.
package seeders

import (
	"gorm.io/gorm"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/pkg/auth"
	"github.com/coldcutclub/storefront/pkg/logger"
)

// Run executes every seeder. Seeding is idempotent: existing rows are
// left alone.
func Run(db *gorm.DB) error {
	if err := seedProducts(db); err != nil {
		return err
	}
	return seedAdmin(db)
}

func seedProducts(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.Product{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		logger.Info("seed: products already present, skipping")
		return nil
	}

	oldRibeye := 72.00
	products := []models.Product{
		{
			Name:        "Dry-Aged Ribeye",
			Slug:        "dry-aged-ribeye",
			Description: "21-day dry-aged ribeye with deep marbling. Sear hard, rest well.",
			Origin:      "Australia",
			Portion:     "350g",
			Price:       65.00,
			OldPrice:    &oldRibeye,
			Badge:       "Best seller",
			Category:    models.CategorySteak,
			Stock:       24,
		},
		{
			Name:        "Striploin Classic",
			Slug:        "striploin-classic",
			Description: "Grain-fed striploin, trimmed and ready for the pan.",
			Origin:      "Australia",
			Portion:     "300g",
			Price:       42.00,
			Category:    models.CategorySteak,
			Stock:       40,
		},
		{
			Name:        "A5 Wagyu Sirloin",
			Slug:        "a5-wagyu-sirloin",
			Description: "Japanese A5 wagyu sirloin. Thin-slice and flash-sear.",
			Origin:      "Kagoshima, Japan",
			Portion:     "200g",
			Price:       129.00,
			Badge:       "A5",
			Category:    models.CategoryWagyu,
			Stock:       8,
		},
		{
			Name:        "Weekend Grill Bundle",
			Slug:        "weekend-grill-bundle",
			Description: "Two ribeyes, two striploins, and our house rub. Feeds four.",
			Origin:      "Australia",
			Portion:     "1.3kg",
			Price:       150.00,
			Category:    models.CategoryBundle,
			Stock:       15,
		},
		{
			Name:        "BBQ Short Plate Set",
			Slug:        "bbq-short-plate-set",
			Description: "Thin-cut short plate with dipping sauce, ready for the grill.",
			Origin:      "USA",
			Portion:     "500g",
			Price:       55.00,
			Category:    models.CategoryBBQ,
			Stock:       30,
		},
		{
			Name:        "Shabu Slice Set",
			Slug:        "shabu-slice-set",
			Description: "Paper-thin chuck roll slices for hotpot, with ponzu.",
			Origin:      "USA",
			Portion:     "400g",
			Price:       38.00,
			Category:    models.CategoryShabu,
			Stock:       30,
		},
	}

	if err := db.Create(&products).Error; err != nil {
		return err
	}
	logger.Info("seed: products created", "count", len(products))
	return nil
}

func seedAdmin(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		logger.Info("seed: admin already present, skipping")
		return nil
	}

	hash, err := auth.HashPassword("change-me-now")
	if err != nil {
		return err
	}
	admin := models.User{
		Name:     "Shop Admin",
		Email:    "admin@coldcut.club",
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logger.Info("seed: admin created", "email", admin.Email)
	return nil
}
