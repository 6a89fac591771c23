package controllers

import (
	"errors"
	"net/http"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/services"
	"github.com/coldcutclub/storefront/pkg/bind"
	"github.com/coldcutclub/storefront/pkg/middleware"
	"github.com/coldcutclub/storefront/pkg/response"
)

type CheckoutController struct {
	checkout *services.CheckoutService
	cart     *services.CartService
}

func NewCheckoutController(checkout *services.CheckoutService, cart *services.CartService) *CheckoutController {
	return &CheckoutController{checkout: checkout, cart: cart}
}

// Quote handles GET /api/checkout/quote?delivery_method=express. It
// reprices the current cart for a delivery method without placing anything.
func (c *CheckoutController) Quote(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)

	method := r.URL.Query().Get("delivery_method")
	if method == "" {
		method = models.DeliveryStandard
	}
	if method != models.DeliveryStandard && method != models.DeliveryExpress {
		response.Error(w, http.StatusBadRequest, "Unknown delivery method")
		return
	}

	view, err := c.cart.View(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not load cart")
		return
	}

	totals := services.ComputeTotals(view.Items, method)
	response.Success(w, totals)
}

// Store handles POST /api/checkout. On success the cart is empty and the
// response carries the new order with its tracking number.
func (c *CheckoutController) Store(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)

	var in services.CheckoutInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.checkout.PlaceOrder(r.Context(), userID, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			response.Error(w, http.StatusUnprocessableEntity, "Your cart is empty")
		case errors.Is(err, services.ErrBadDelivery):
			response.Error(w, http.StatusUnprocessableEntity, "Unknown delivery method")
		case errors.Is(err, services.ErrBadPayment):
			response.Error(w, http.StatusUnprocessableEntity, "Unknown payment method")
		case errors.Is(err, services.ErrProductUnavailable):
			response.Error(w, http.StatusConflict, "An item in your cart is no longer available")
		default:
			response.Error(w, http.StatusInternalServerError, "Could not place order")
		}
		return
	}
	response.Created(w, order)
}
