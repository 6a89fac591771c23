// Package repositories wraps database access behind small per-model types.
package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/pkg/cache"
)

const productListTTL = 5 * time.Minute

// ProductFilter narrows and orders a catalog listing.
type ProductFilter struct {
	Category string // exact match
	Search   string // substring over name, origin, category
	Sort     string // "price_asc" | "price_desc" | "" (newest first)
	Limit    int    // 0 means no limit
}

func (f ProductFilter) plain() bool {
	return f.Search == "" && f.Sort == "" && f.Limit == 0
}

// ProductRepository reads and writes the product catalog. Plain listings
// (whole catalog or one category, default order) are cached in Redis;
// writes invalidate.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func listCacheKey(category string) string {
	if category == "" {
		category = "all"
	}
	return "products:list:" + category
}

// List returns catalog products matching the filter.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	cacheable := f.plain()
	if cacheable {
		var cached []models.Product
		if cache.Get(listCacheKey(f.Category), &cached) {
			return cached, nil
		}
	}

	q := r.db.WithContext(ctx)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR origin LIKE ? OR category LIKE ?", pat, pat, pat)
	}
	switch f.Sort {
	case "price_asc":
		q = q.Order("price ASC")
	case "price_desc":
		q = q.Order("price DESC")
	default:
		q = q.Order("created_at DESC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}

	if cacheable {
		_ = cache.Set(listCacheKey(f.Category), products, productListTTL)
	}
	return products, nil
}

// Find returns the product with the given id.
func (r *ProductRepository) Find(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindBySlug returns the product with the given slug.
func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindMany returns the products with the given ids, keyed by id.
func (r *ProductRepository) FindMany(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	if len(ids) == 0 {
		return map[uint]models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]models.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// SlugTaken reports whether a slug is already used by another product.
func (r *ProductRepository) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// Create adds a product and invalidates the listing cache.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return err
	}
	r.invalidate(p.Category)
	return nil
}

// Update saves changes to a product and invalidates the listing cache.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return err
	}
	r.invalidate(p.Category)
	return nil
}

// Delete removes a product and any cart lines still pointing at it, then
// invalidates the listing cache. Order lines keep their frozen snapshots.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return err
	}
	r.invalidate(p.Category)
	return nil
}

func (r *ProductRepository) invalidate(category string) {
	keys := []string{listCacheKey("")}
	if category != "" {
		keys = append(keys, listCacheKey(category))
	}
	_ = cache.Del(keys...)
}

// Count returns the catalog size, for the admin dashboard.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}
