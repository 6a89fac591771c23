package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/pkg/event"
	"github.com/coldcutclub/storefront/pkg/metrics"
)

func newOrderService(t *testing.T) (*OrderService, *gorm.DB) {
	db := testDB(t)
	return NewOrderService(repositories.NewOrderRepository(db), repositories.NewProductRepository(db)), db
}

func placedOrder(t *testing.T, db *gorm.DB, userID uint, status, tracking string) models.Order {
	t.Helper()
	order := models.Order{
		UserID:         userID,
		TrackingNumber: tracking,
		Status:         status,
		FirstName:      "Jo",
		LastName:       "Butcher",
		Email:          "jo@example.com",
		Phone:          "555-0101",
		Address:        "12 Cold Storage Rd",
		City:           "Meatville",
		DeliveryMethod: models.DeliveryStandard,
		PaymentMethod:  models.PaymentCard,
		Subtotal:       130.00,
		ShippingFee:    12.00,
		TaxAmount:      6.50,
		Total:          148.50,
		Items: []models.OrderItem{
			{ProductName: "Ribeye", UnitPrice: 65.00, Quantity: 2, LineTotal: 130.00},
		},
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestCanTransitionMatrix(t *testing.T) {
	allowed := map[[2]string]bool{
		{models.StatusPending, models.StatusConfirmed}:   true,
		{models.StatusConfirmed, models.StatusShipped}:   true,
		{models.StatusShipped, models.StatusDelivered}:   true,
		{models.StatusPending, models.StatusCancelled}:   true,
		{models.StatusConfirmed, models.StatusCancelled}: true,
		{models.StatusShipped, models.StatusCancelled}:   true,
	}

	statuses := []string{
		models.StatusPending, models.StatusConfirmed, models.StatusShipped,
		models.StatusDelivered, models.StatusCancelled,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			got := models.CanTransition(from, to)
			want := allowed[[2]string{from, to}]
			assert.Equal(t, want, got, "%s -> %s", from, to)
		}
	}
}

func TestStatusStep(t *testing.T) {
	assert.Equal(t, 0, models.StatusStep(models.StatusPending))
	assert.Equal(t, 1, models.StatusStep(models.StatusConfirmed))
	assert.Equal(t, 2, models.StatusStep(models.StatusShipped))
	assert.Equal(t, 3, models.StatusStep(models.StatusDelivered))
	assert.Equal(t, -1, models.StatusStep(models.StatusCancelled))
	assert.Equal(t, -1, models.StatusStep("garbage"))
}

func TestTransitionAdvancesOneStep(t *testing.T) {
	svc, db := newOrderService(t)
	order := placedOrder(t, db, 1, models.StatusPending, "CC-111-222-333")

	updated, err := svc.Transition(context.Background(), order.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestTransitionRejectsSkippingSteps(t *testing.T) {
	svc, db := newOrderService(t)
	order := placedOrder(t, db, 1, models.StatusPending, "CC-111-222-334")

	_, err := svc.Transition(context.Background(), order.ID, models.StatusShipped)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusPending, stored.Status, "rejected move must not change the row")
}

func TestTransitionRejectsBackwardMoves(t *testing.T) {
	svc, db := newOrderService(t)
	order := placedOrder(t, db, 1, models.StatusShipped, "CC-111-222-335")

	_, err := svc.Transition(context.Background(), order.ID, models.StatusConfirmed)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestRejectedTransitionRecordsFromStatus(t *testing.T) {
	svc, db := newOrderService(t)
	order := placedOrder(t, db, 1, models.StatusPending, "CC-111-222-340")

	counter := metrics.OrderStatusTransitions.WithLabelValues(
		models.StatusPending, models.StatusShipped, "rejected")
	before := testutil.ToFloat64(counter)

	_, err := svc.Transition(context.Background(), order.ID, models.StatusShipped)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 1e-9)
}

func TestCancelledIsTerminal(t *testing.T) {
	svc, db := newOrderService(t)
	order := placedOrder(t, db, 1, models.StatusCancelled, "CC-111-222-336")

	for _, to := range []string{models.StatusConfirmed, models.StatusCancelled, models.StatusDelivered} {
		_, err := svc.Transition(context.Background(), order.ID, to)
		assert.ErrorIs(t, err, models.ErrInvalidTransition, "cancelled -> %s", to)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc, db := newOrderService(t)
	order := placedOrder(t, db, 1, models.StatusPending, "CC-111-222-337")

	_, err := svc.Transition(context.Background(), order.ID, "lost-in-transit")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTransitionFiresStatusEvent(t *testing.T) {
	svc, db := newOrderService(t)
	order := placedOrder(t, db, 1, models.StatusPending, "CC-111-222-338")

	ch, cancel := event.Subscribe(EventOrderStatusChanged)
	defer cancel()

	_, err := svc.Transition(context.Background(), order.ID, models.StatusConfirmed)
	require.NoError(t, err)

	payload := <-ch
	change, ok := payload.(*StatusChange)
	require.True(t, ok)
	assert.Equal(t, order.ID, change.OrderID)
	assert.Equal(t, models.StatusPending, change.From)
	assert.Equal(t, models.StatusConfirmed, change.To)
	assert.Equal(t, "CC-111-222-338", change.TrackingNumber)
}

func TestTrackProjectsOrder(t *testing.T) {
	svc, db := newOrderService(t)
	placedOrder(t, db, 1, models.StatusShipped, "CC-444-555-666")

	view, err := svc.Track(context.Background(), "cc-444-555-666 ")
	require.NoError(t, err)

	assert.Equal(t, "CC-444-555-666", view.TrackingNumber)
	assert.Equal(t, models.StatusShipped, view.Status)
	assert.Equal(t, 2, view.Step)
	assert.False(t, view.Cancelled)
	assert.Len(t, view.Items, 1)
	assert.InDelta(t, 148.50, view.Total, 1e-9)
}

func TestTrackCancelledOrder(t *testing.T) {
	svc, db := newOrderService(t)
	placedOrder(t, db, 1, models.StatusCancelled, "CC-444-555-667")

	view, err := svc.Track(context.Background(), "CC-444-555-667")
	require.NoError(t, err)

	assert.True(t, view.Cancelled)
	assert.Equal(t, -1, view.Step)
}

func TestTrackUnknownNumber(t *testing.T) {
	svc, _ := newOrderService(t)

	_, err := svc.Track(context.Background(), "CC-999-999-999")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestTrackMalformedNumber(t *testing.T) {
	svc, _ := newOrderService(t)

	for _, bad := range []string{"", "CC-12-345-678", "XX-123-456-789", "CC-123-456-78a"} {
		_, err := svc.Track(context.Background(), bad)
		assert.ErrorIs(t, err, ErrBadTracking, "input %q", bad)
	}
}

func TestHistoryEnrichesLivingProducts(t *testing.T) {
	svc, db := newOrderService(t)

	p := seedProduct(t, db, "Ribeye", 65.00)
	require.NoError(t, db.Model(&p).Updates(map[string]interface{}{
		"image_url": "/storage/products/ribeye.jpg",
		"portion":   "350g",
	}).Error)

	order := placedOrder(t, db, 1, models.StatusDelivered, "CC-500-600-700")
	require.NoError(t, db.Model(&models.OrderItem{}).
		Where("order_id = ?", order.ID).
		Update("product_id", p.ID).Error)

	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, history[0].Items, 1)
	assert.Equal(t, "/storage/products/ribeye.jpg", history[0].Items[0].ImageURL)
	assert.Equal(t, "350g", history[0].Items[0].Portion)

	// A deleted product degrades to the frozen snapshot.
	require.NoError(t, db.Delete(&models.Product{}, p.ID).Error)
	history, err = svc.History(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history[0].Items, 1)
	assert.Empty(t, history[0].Items[0].ImageURL)
	assert.Equal(t, "Ribeye", history[0].Items[0].ProductName)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, db := newOrderService(t)
	order := placedOrder(t, db, 1, models.StatusPending, "CC-777-888-999")

	_, err := svc.Get(context.Background(), 2, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCustomerCancelBeforeShipment(t *testing.T) {
	svc, db := newOrderService(t)
	order := placedOrder(t, db, 1, models.StatusConfirmed, "CC-100-200-300")

	updated, err := svc.Cancel(context.Background(), 1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
}

func TestCustomerCancelAfterShipmentRejected(t *testing.T) {
	svc, db := newOrderService(t)
	order := placedOrder(t, db, 1, models.StatusShipped, "CC-100-200-301")

	_, err := svc.Cancel(context.Background(), 1, order.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}
