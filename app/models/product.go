package models

import "time"

// Product categories carried by the shop.
const (
	CategorySteak  = "steak"
	CategoryWagyu  = "wagyu"
	CategoryBundle = "bundle"
	CategoryBBQ    = "bbq"
	CategoryShabu  = "shabu"
)

// Categories lists every valid product category.
var Categories = []string{CategorySteak, CategoryWagyu, CategoryBundle, CategoryBBQ, CategoryShabu}

// Product is a cut or bundle in the catalog. OldPrice, when set, is the
// struck-through compare-at price; Badge is a short label like "Best
// Seller". Stock is informational: shown to customers and edited by
// admins, never reserved.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Origin      string    `gorm:"size:100" json:"origin"`
	Portion     string    `gorm:"size:50" json:"portion"`
	Price       float64   `gorm:"not null" json:"price"`
	OldPrice    *float64  `json:"old_price,omitempty"`
	Badge       string    `gorm:"size:50" json:"badge,omitempty"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	Category    string    `gorm:"size:50;index" json:"category"`
	Stock       int       `gorm:"default:0" json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
