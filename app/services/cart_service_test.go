package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
)

func line(price float64, qty int) models.CartItem {
	return models.CartItem{Quantity: qty, Product: models.Product{Price: price}}
}

func TestComputeTotalsStandard(t *testing.T) {
	items := []models.CartItem{line(65.00, 2)}
	totals := ComputeTotals(items, models.DeliveryStandard)

	assert.InDelta(t, 130.00, totals.Subtotal, 1e-9)
	assert.InDelta(t, 12.00, totals.ShippingFee, 1e-9)
	assert.InDelta(t, 6.50, totals.TaxAmount, 1e-9)
	assert.InDelta(t, 148.50, totals.Total, 1e-9)
	assert.Equal(t, 2, totals.ItemCount)
}

func TestComputeTotalsExpress(t *testing.T) {
	items := []models.CartItem{line(129.00, 1), line(55.00, 3)}
	totals := ComputeTotals(items, models.DeliveryExpress)

	assert.InDelta(t, 294.00, totals.Subtotal, 1e-9)
	assert.InDelta(t, 24.00, totals.ShippingFee, 1e-9)
	assert.InDelta(t, 14.70, totals.TaxAmount, 1e-9)
	assert.InDelta(t, 332.70, totals.Total, 1e-9)
	assert.Equal(t, 4, totals.ItemCount)
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, models.DeliveryStandard)

	assert.Zero(t, totals.Subtotal)
	assert.InDelta(t, 12.00, totals.ShippingFee, 1e-9)
	assert.Zero(t, totals.TaxAmount)
	assert.InDelta(t, 12.00, totals.Total, 1e-9)
}

func TestComputeTotalsUnknownMethodPricedAsStandard(t *testing.T) {
	items := []models.CartItem{line(10.00, 1)}
	totals := ComputeTotals(items, "pigeon")

	assert.InDelta(t, ShippingStandard, totals.ShippingFee, 1e-9)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 14.70, Round2(14.700000000000001), 1e-9)
	assert.InDelta(t, 0.1, Round2(0.10000000000000003), 1e-9)
	assert.InDelta(t, 2.35, Round2(2.345), 1e-9)
}

func newCartService(t *testing.T) (*CartService, *repositories.CartRepository, *repositories.ProductRepository, func() models.Product) {
	db := testDB(t)
	carts := repositories.NewCartRepository(db)
	products := repositories.NewProductRepository(db)
	svc := NewCartService(carts, products)
	mk := func() models.Product { return seedProduct(t, db, "Ribeye", 65.00) }
	return svc, carts, products, mk
}

func TestCartAddMergesDuplicateLines(t *testing.T) {
	svc, carts, _, mk := newCartService(t)
	p := mk()

	_, err := svc.Add(context.Background(), 1, p.ID, 2)
	require.NoError(t, err)
	item, err := svc.Add(context.Background(), 1, p.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, 5, item.Quantity)

	items, err := carts.Items(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartAddUnknownProduct(t *testing.T) {
	svc, _, _, _ := newCartService(t)

	_, err := svc.Add(context.Background(), 1, 9999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartAddRejectsZeroQuantity(t *testing.T) {
	svc, _, _, mk := newCartService(t)
	p := mk()

	_, err := svc.Add(context.Background(), 1, p.ID, 0)
	assert.ErrorIs(t, err, ErrBadQuantity)
}

func TestCartUpdateQuantityZeroRemovesLine(t *testing.T) {
	svc, carts, _, mk := newCartService(t)
	p := mk()

	added, err := svc.Add(context.Background(), 1, p.ID, 2)
	require.NoError(t, err)

	item, err := svc.UpdateQuantity(context.Background(), 1, added.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, item)

	items, err := carts.Items(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartIsPerUser(t *testing.T) {
	svc, carts, _, mk := newCartService(t)
	p := mk()

	_, err := svc.Add(context.Background(), 1, p.ID, 2)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), 2, p.ID, 1)
	require.NoError(t, err)

	mine, err := carts.Items(context.Background(), 1)
	require.NoError(t, err)
	theirs, err := carts.Items(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, mine[0].Quantity)
	assert.Equal(t, 1, theirs[0].Quantity)
}

func TestCartCountSumsQuantities(t *testing.T) {
	svc, _, _, mk := newCartService(t)
	p := mk()

	count, err := svc.Count(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "empty cart counts zero")

	_, err = svc.Add(context.Background(), 1, p.ID, 2)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), 1, p.ID, 3)
	require.NoError(t, err)

	count, err = svc.Count(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestCartRemoveOtherUsersLine(t *testing.T) {
	svc, _, _, mk := newCartService(t)
	p := mk()

	added, err := svc.Add(context.Background(), 1, p.ID, 2)
	require.NoError(t, err)

	err = svc.Remove(context.Background(), 2, added.ID)
	assert.Error(t, err)
}
