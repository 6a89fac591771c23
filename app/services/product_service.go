package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/pkg/storage"
)

// ProductInput carries the editable product fields for the back office.
// Slug is optional; it is derived from the name when blank.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Slug        string   `json:"slug" validate:"nullable,alpha_dash,max=255"`
	Description string   `json:"description" validate:"max=5000"`
	Origin      string   `json:"origin" validate:"max=100"`
	Portion     string   `json:"portion" validate:"max=50"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	OldPrice    *float64 `json:"old_price"`
	Badge       string   `json:"badge" validate:"max=50"`
	Category    string   `json:"category" validate:"required,in=steak,wagyu,bundle,bbq,shabu"`
	Stock       int      `json:"stock" validate:"gte=0"`
}

// ProductService fronts the catalog for both the shop and the back office.
type ProductService struct {
	products *repositories.ProductRepository
}

func NewProductService(products *repositories.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) List(ctx context.Context, f repositories.ProductFilter) ([]models.Product, error) {
	return s.products.List(ctx, f)
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// Create adds a catalog entry, deriving and deduplicating the slug.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	slug, err := s.resolveSlug(ctx, in.Slug, in.Name, 0)
	if err != nil {
		return nil, err
	}
	p := &models.Product{
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		Origin:      in.Origin,
		Portion:     in.Portion,
		Price:       in.Price,
		OldPrice:    in.OldPrice,
		Badge:       in.Badge,
		Category:    in.Category,
		Stock:       in.Stock,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update rewrites a catalog entry in place.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	slug, err := s.resolveSlug(ctx, in.Slug, in.Name, id)
	if err != nil {
		return nil, err
	}
	p.Name = in.Name
	p.Slug = slug
	p.Description = in.Description
	p.Origin = in.Origin
	p.Portion = in.Portion
	p.Price = in.Price
	p.OldPrice = in.OldPrice
	p.Badge = in.Badge
	p.Category = in.Category
	p.Stock = in.Stock
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a catalog entry. Past orders keep their frozen copies.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := s.products.Delete(ctx, id)
	if repositories.IsNotFound(err) {
		return ErrProductNotFound
	}
	return err
}

// AttachImage stores an uploaded image on the default disk and points the
// product at it. The filename is regenerated to avoid collisions.
func (s *ProductService) AttachImage(ctx context.Context, id uint, filename string, contents io.Reader) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	disk, err := storage.Default()
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	path := fmt.Sprintf("products/%d-%d%s", id, time.Now().UnixNano(), ext)
	if err := disk.PutStream(ctx, path, contents); err != nil {
		return nil, err
	}

	p.ImageURL = disk.URL(path)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// resolveSlug picks the final slug for a product: the explicit one if
// given, otherwise one derived from the name; numeric suffixes resolve
// collisions.
func (s *ProductService) resolveSlug(ctx context.Context, explicit, name string, excludeID uint) (string, error) {
	base := explicit
	if base == "" {
		base = Slugify(name)
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := s.products.SlugTaken(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Slugify lowercases and hyphenates a name into a URL-safe slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
