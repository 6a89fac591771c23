package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/app/services"
	"github.com/coldcutclub/storefront/pkg/router"
)

func trackingRouter(t *testing.T) (*router.Router, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderItem{}))

	svc := services.NewOrderService(repositories.NewOrderRepository(db), nil)
	ctl := NewOrderController(svc)

	r := router.New()
	r.Get("/api/track/{tracking}", "orders.track", ctl.Track)
	return r, db
}

type trackResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    struct {
		TrackingNumber string `json:"tracking_number"`
		Status         string `json:"status"`
		Step           int    `json:"step"`
		Cancelled      bool   `json:"cancelled"`
	} `json:"data"`
}

func TestTrackEndpoint(t *testing.T) {
	r, db := trackingRouter(t)
	order := models.Order{
		TrackingNumber: "CC-123-456-789",
		Status:         models.StatusConfirmed,
		FirstName:      "Jo",
		LastName:       "Butcher",
		Email:          "jo@example.com",
		Phone:          "555-0101",
		Address:        "12 Cold Storage Rd",
		City:           "Meatville",
		DeliveryMethod: models.DeliveryStandard,
		PaymentMethod:  models.PaymentCard,
		Total:          148.50,
	}
	require.NoError(t, db.Create(&order).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/track/CC-123-456-789", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body trackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CC-123-456-789", body.Data.TrackingNumber)
	assert.Equal(t, models.StatusConfirmed, body.Data.Status)
	assert.Equal(t, 1, body.Data.Step)
	assert.False(t, body.Data.Cancelled)
}

func TestTrackEndpointNotFound(t *testing.T) {
	r, _ := trackingRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/track/CC-000-000-000", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body trackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No order found for that tracking number", body.Message)
}

func TestTrackEndpointMalformedNumber(t *testing.T) {
	r, _ := trackingRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/track/abc123", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
