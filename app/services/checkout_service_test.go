package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/pkg/validate"
)

var trackingRe = regexp.MustCompile(`^CC-\d{3}-\d{3}-\d{3}$`)

func validCheckout() CheckoutInput {
	return CheckoutInput{
		FirstName:      "Jo",
		LastName:       "Butcher",
		Email:          "jo@example.com",
		Phone:          "555-0101",
		Address:        "12 Cold Storage Rd",
		City:           "Meatville",
		Postcode:       "10110",
		DeliveryMethod: models.DeliveryStandard,
		PaymentMethod:  models.PaymentCard,
	}
}

func newCheckout(t *testing.T) (*CheckoutService, *gorm.DB, *repositories.CartRepository) {
	db := testDB(t)
	orders := repositories.NewOrderRepository(db)
	carts := repositories.NewCartRepository(db)
	users := repositories.NewUserRepository(db)
	return NewCheckoutService(orders, carts, users), db, carts
}

func TestPlaceOrderAssemblesOrder(t *testing.T) {
	svc, db, _ := newCheckout(t)
	ribeye := seedProduct(t, db, "Ribeye", 65.00)
	addToCart(t, db, 1, ribeye, 2)

	order, err := svc.PlaceOrder(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Regexp(t, trackingRe, order.TrackingNumber)
	assert.InDelta(t, 130.00, order.Subtotal, 1e-9)
	assert.InDelta(t, 12.00, order.ShippingFee, 1e-9)
	assert.InDelta(t, 6.50, order.TaxAmount, 1e-9)
	assert.InDelta(t, 148.50, order.Total, 1e-9)
}

func TestPlaceOrderFreezesLines(t *testing.T) {
	svc, db, _ := newCheckout(t)
	wagyu := seedProduct(t, db, "A5 Wagyu Sirloin", 129.00)
	bbq := seedProduct(t, db, "BBQ Short Plate Set", 55.00)
	addToCart(t, db, 1, wagyu, 1)
	addToCart(t, db, 1, bbq, 3)

	in := validCheckout()
	in.DeliveryMethod = models.DeliveryExpress
	order, err := svc.PlaceOrder(context.Background(), 1, in)
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	byName := map[string]models.OrderItem{}
	for _, it := range order.Items {
		byName[it.ProductName] = it
	}
	assert.InDelta(t, 129.00, byName["A5 Wagyu Sirloin"].UnitPrice, 1e-9)
	assert.InDelta(t, 165.00, byName["BBQ Short Plate Set"].LineTotal, 1e-9)
	assert.InDelta(t, 332.70, order.Total, 1e-9)

	// Later catalog edits must not rewrite the frozen lines.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", wagyu.ID).
		Update("price", 999.00).Error)
	var stored models.OrderItem
	require.NoError(t, db.Where("order_id = ? AND product_id = ?", order.ID, wagyu.ID).
		First(&stored).Error)
	assert.InDelta(t, 129.00, stored.UnitPrice, 1e-9)
}

func TestPlaceOrderClearsCart(t *testing.T) {
	svc, db, carts := newCheckout(t)
	ribeye := seedProduct(t, db, "Ribeye", 65.00)
	addToCart(t, db, 1, ribeye, 2)

	_, err := svc.PlaceOrder(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	items, err := carts.Items(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPlaceOrderLeavesOtherCartsAlone(t *testing.T) {
	svc, db, carts := newCheckout(t)
	ribeye := seedProduct(t, db, "Ribeye", 65.00)
	addToCart(t, db, 1, ribeye, 2)
	addToCart(t, db, 2, ribeye, 1)

	_, err := svc.PlaceOrder(context.Background(), 1, validCheckout())
	require.NoError(t, err)

	theirs, err := carts.Items(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestCheckoutFormRequiresOnlyShippingFields(t *testing.T) {
	in := validCheckout()
	in.Email = ""
	in.Phone = ""
	in.Postcode = ""
	in.Note = ""
	assert.Empty(t, validate.Struct(in), "name, address, and city are the only required shipping fields")
}

func TestPlaceOrderEmailIsOptional(t *testing.T) {
	svc, db, _ := newCheckout(t)
	user := models.User{Name: "Jo Butcher", Email: "account@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	ribeye := seedProduct(t, db, "Ribeye", 65.00)
	addToCart(t, db, user.ID, ribeye, 1)

	in := validCheckout()
	in.Email = ""
	order, err := svc.PlaceOrder(context.Background(), user.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "account@example.com", order.Email, "blank email falls back to the account")
}

func TestPlaceOrderRejectsDeletedProduct(t *testing.T) {
	svc, db, carts := newCheckout(t)
	ribeye := seedProduct(t, db, "Ribeye", 65.00)
	addToCart(t, db, 1, ribeye, 2)

	// Simulate a catalog delete racing the checkout, after the line was
	// carted but before the order is placed.
	require.NoError(t, db.Delete(&models.Product{}, ribeye.ID).Error)

	_, err := svc.PlaceOrder(context.Background(), 1, validCheckout())
	assert.ErrorIs(t, err, ErrProductUnavailable)

	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n, "no order may be written from a ghost line")

	items, err := carts.Items(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1, "the rejected checkout leaves the cart alone")
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc, _, _ := newCheckout(t)

	_, err := svc.PlaceOrder(context.Background(), 1, validCheckout())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderRejectsBadMethods(t *testing.T) {
	svc, db, carts := newCheckout(t)
	ribeye := seedProduct(t, db, "Ribeye", 65.00)
	addToCart(t, db, 1, ribeye, 1)

	in := validCheckout()
	in.DeliveryMethod = "teleport"
	_, err := svc.PlaceOrder(context.Background(), 1, in)
	assert.ErrorIs(t, err, ErrBadDelivery)

	in = validCheckout()
	in.PaymentMethod = "iou"
	_, err = svc.PlaceOrder(context.Background(), 1, in)
	assert.ErrorIs(t, err, ErrBadPayment)

	// A rejected checkout must leave the cart untouched.
	items, err := carts.Items(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestTrackingNumbersAreUniquePerOrder(t *testing.T) {
	svc, db, _ := newCheckout(t)
	ribeye := seedProduct(t, db, "Ribeye", 65.00)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		addToCart(t, db, 1, ribeye, 1)
		order, err := svc.PlaceOrder(context.Background(), 1, validCheckout())
		require.NoError(t, err)
		assert.Regexp(t, trackingRe, order.TrackingNumber)
		assert.False(t, seen[order.TrackingNumber], "tracking number reused")
		seen[order.TrackingNumber] = true
	}
}

func TestGenerateTrackingNumberFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		tracking, err := generateTrackingNumber()
		require.NoError(t, err)
		assert.Regexp(t, trackingRe, tracking)
	}
}
