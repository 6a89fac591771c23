package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/services"
	"github.com/coldcutclub/storefront/pkg/event"
	"github.com/coldcutclub/storefront/pkg/middleware"
	"github.com/coldcutclub/storefront/pkg/response"
	"github.com/coldcutclub/storefront/pkg/router"
	"github.com/coldcutclub/storefront/pkg/sse"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Track handles GET /api/track/{tracking}. Public: anyone holding a
// tracking number can see that order's progress.
func (c *OrderController) Track(w http.ResponseWriter, r *http.Request) {
	view, err := c.orders.Track(r.Context(), router.Param(r, "tracking"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadTracking):
			response.Error(w, http.StatusBadRequest, "Tracking numbers look like CC-123-456-789")
		case errors.Is(err, services.ErrOrderNotFound):
			response.NotFound(w, "No order found for that tracking number")
		default:
			response.Error(w, http.StatusInternalServerError, "Could not look up order")
		}
		return
	}
	response.Success(w, view)
}

// TrackStream handles GET /api/track/{tracking}/stream. It holds an SSE
// connection open and pushes a fresh projection whenever the order's
// status changes, so the tracking page updates without polling.
func (c *OrderController) TrackStream(w http.ResponseWriter, r *http.Request) {
	tracking := router.Param(r, "tracking")

	view, err := c.orders.Track(r.Context(), tracking)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) || errors.Is(err, services.ErrBadTracking) {
			response.NotFound(w, "No order found for that tracking number")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not look up order")
		return
	}

	stream := sse.New(w, r)
	if err := stream.Send("status", view); err != nil {
		return
	}

	changes, cancel := event.Subscribe(services.EventOrderStatusChanged)
	defer cancel()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			stream.Comment("keepalive")
			if stream.IsClosed() {
				return
			}
		case payload, ok := <-changes:
			if !ok {
				return
			}
			change, ok := payload.(*services.StatusChange)
			if !ok || change.TrackingNumber != view.TrackingNumber {
				continue
			}
			fresh, err := c.orders.Track(r.Context(), tracking)
			if err != nil {
				return
			}
			if err := stream.Send("status", fresh); err != nil {
				return
			}
		}
	}
}

// Index handles GET /api/orders: the signed-in user's order history.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)
	orders, err := c.orders.History(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not load orders")
		return
	}
	response.Success(w, orders)
}

// Show handles GET /api/orders/{id} for the order's owner.
func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)

	orderID, err := strconv.ParseUint(router.Param(r, "id"), 10, 32)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := c.orders.Get(r.Context(), userID, uint(orderID))
	if err != nil {
		response.NotFound(w, "Order not found")
		return
	}
	response.Success(w, order)
}

// Cancel handles POST /api/orders/{id}/cancel. Owners can cancel until
// the order ships.
func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)

	orderID, err := strconv.ParseUint(router.Param(r, "id"), 10, 32)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := c.orders.Cancel(r.Context(), userID, uint(orderID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			response.NotFound(w, "Order not found")
		case errors.Is(err, models.ErrInvalidTransition):
			response.Error(w, http.StatusConflict, "This order can no longer be cancelled")
		default:
			response.Error(w, http.StatusInternalServerError, "Could not cancel order")
		}
		return
	}
	response.Success(w, order)
}
