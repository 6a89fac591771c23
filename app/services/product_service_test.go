package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
)

func newProductService(t *testing.T) *ProductService {
	return NewProductService(repositories.NewProductRepository(testDB(t)))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "dry-aged-ribeye", Slugify("Dry-Aged Ribeye"))
	assert.Equal(t, "a5-wagyu-sirloin", Slugify("A5 Wagyu  Sirloin!"))
	assert.Equal(t, "bbq-set", Slugify("  BBQ set??"))
	assert.Equal(t, "", Slugify("---"))
}

func TestCreateDerivesSlug(t *testing.T) {
	svc := newProductService(t)

	p, err := svc.Create(context.Background(), ProductInput{
		Name:     "Dry-Aged Ribeye",
		Price:    65.00,
		Category: models.CategorySteak,
		Stock:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, "dry-aged-ribeye", p.Slug)
}

func TestCreateSuffixesDuplicateSlugs(t *testing.T) {
	svc := newProductService(t)

	in := ProductInput{Name: "Ribeye", Price: 65.00, Category: models.CategorySteak}
	first, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	third, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "ribeye", first.Slug)
	assert.Equal(t, "ribeye-2", second.Slug)
	assert.Equal(t, "ribeye-3", third.Slug)
}

func TestUpdateKeepsOwnSlug(t *testing.T) {
	svc := newProductService(t)

	in := ProductInput{Name: "Ribeye", Slug: "ribeye", Price: 65.00, Category: models.CategorySteak}
	p, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	in.Price = 68.00
	updated, err := svc.Update(context.Background(), p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "ribeye", updated.Slug, "updating a product must not suffix its own slug")
	assert.InDelta(t, 68.00, updated.Price, 1e-9)
}

func TestGetBySlug(t *testing.T) {
	svc := newProductService(t)

	created, err := svc.Create(context.Background(), ProductInput{
		Name: "Shabu Slice Set", Price: 38.00, Category: models.CategoryShabu,
	})
	require.NoError(t, err)

	found, err := svc.GetBySlug(context.Background(), "shabu-slice-set")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetBySlug(context.Background(), "no-such-cut")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListFilters(t *testing.T) {
	svc := newProductService(t)

	mk := func(name, category string, price float64) {
		_, err := svc.Create(context.Background(), ProductInput{Name: name, Price: price, Category: category})
		require.NoError(t, err)
	}
	mk("Dry-Aged Ribeye", models.CategorySteak, 65.00)
	mk("A5 Wagyu Sirloin", models.CategoryWagyu, 129.00)
	mk("Shabu Slice Set", models.CategoryShabu, 38.00)

	byCategory, err := svc.List(context.Background(), repositories.ProductFilter{Category: models.CategoryWagyu})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "A5 Wagyu Sirloin", byCategory[0].Name)

	bySearch, err := svc.List(context.Background(), repositories.ProductFilter{Search: "ribeye"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)

	cheapFirst, err := svc.List(context.Background(), repositories.ProductFilter{Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, cheapFirst, 3)
	assert.Equal(t, "Shabu Slice Set", cheapFirst[0].Name)
	assert.Equal(t, "A5 Wagyu Sirloin", cheapFirst[2].Name)

	limited, err := svc.List(context.Background(), repositories.ProductFilter{Sort: "price_desc", Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "A5 Wagyu Sirloin", limited[0].Name)
}

func TestDeleteRemovesCartLines(t *testing.T) {
	db := testDB(t)
	svc := NewProductService(repositories.NewProductRepository(db))
	carts := repositories.NewCartRepository(db)

	p, err := svc.Create(context.Background(), ProductInput{
		Name: "Ribeye", Price: 65.00, Category: models.CategorySteak,
	})
	require.NoError(t, err)
	_, err = carts.Upsert(context.Background(), 1, p.ID, 2)
	require.NoError(t, err)
	_, err = carts.Upsert(context.Background(), 2, p.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))

	for _, userID := range []uint{1, 2} {
		items, err := carts.Items(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, items, "user %d keeps no line for a deleted product", userID)
	}
}

func TestDeleteLeavesOrderLinesIntact(t *testing.T) {
	db := testDB(t)
	svc := NewProductService(repositories.NewProductRepository(db))

	p, err := svc.Create(context.Background(), ProductInput{
		Name: "Ribeye", Price: 65.00, Category: models.CategorySteak,
	})
	require.NoError(t, err)

	productID := p.ID
	order := models.Order{
		UserID:         1,
		TrackingNumber: "CC-321-654-987",
		Status:         models.StatusDelivered,
		FirstName:      "Jo",
		LastName:       "Butcher",
		Email:          "jo@example.com",
		Address:        "12 Cold Storage Rd",
		City:           "Meatville",
		DeliveryMethod: models.DeliveryStandard,
		PaymentMethod:  models.PaymentCard,
		Items: []models.OrderItem{
			{ProductID: &productID, ProductName: "Ribeye", UnitPrice: 65.00, Quantity: 1, LineTotal: 65.00},
		},
	}
	require.NoError(t, db.Create(&order).Error)

	require.NoError(t, svc.Delete(context.Background(), p.ID))

	var line models.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&line).Error)
	assert.Equal(t, "Ribeye", line.ProductName)
	assert.InDelta(t, 65.00, line.LineTotal, 1e-9)
}
