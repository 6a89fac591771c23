package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/app/services"
	"github.com/coldcutclub/storefront/pkg/bind"
	"github.com/coldcutclub/storefront/pkg/middleware"
	"github.com/coldcutclub/storefront/pkg/response"
	"github.com/coldcutclub/storefront/pkg/router"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

// Index handles GET /api/cart.
func (c *CartController) Index(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)
	view, err := c.cart.View(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not load cart")
		return
	}
	response.Success(w, view)
}

// Count handles GET /api/cart/count: the unit count for the header badge.
func (c *CartController) Count(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)
	count, err := c.cart.Count(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not count cart")
		return
	}
	response.Success(w, map[string]int{"count": count})
}

type addToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gte=1"`
}

// Store handles POST /api/cart.
func (c *CartController) Store(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)

	var in addToCartRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	item, err := c.cart.Add(r.Context(), userID, in.ProductID, in.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			response.NotFound(w, "Product not found")
		case errors.Is(err, services.ErrBadQuantity):
			response.Error(w, http.StatusUnprocessableEntity, "Quantity must be at least 1")
		default:
			response.Error(w, http.StatusInternalServerError, "Could not add to cart")
		}
		return
	}
	response.Created(w, item)
}

type updateCartRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// Update handles PUT /api/cart/{id}. Quantity zero removes the line.
func (c *CartController) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)

	itemID, err := strconv.ParseUint(router.Param(r, "id"), 10, 32)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	var in updateCartRequest
	if errs, bindErr := bind.JSON(r, &in); bindErr != nil {
		response.Error(w, http.StatusBadRequest, bindErr.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	item, err := c.cart.UpdateQuantity(r.Context(), userID, uint(itemID), in.Quantity)
	if err != nil {
		if repositories.IsNotFound(err) {
			response.NotFound(w, "Cart item not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not update cart")
		return
	}
	response.Success(w, item)
}

// Destroy handles DELETE /api/cart/{id}.
func (c *CartController) Destroy(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)

	itemID, err := strconv.ParseUint(router.Param(r, "id"), 10, 32)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	if err := c.cart.Remove(r.Context(), userID, uint(itemID)); err != nil {
		if repositories.IsNotFound(err) {
			response.NotFound(w, "Cart item not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not remove item")
		return
	}
	response.Success(w, nil)
}

// Clear handles DELETE /api/cart.
func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromCtx(r)
	if err := c.cart.Clear(r.Context(), userID); err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not clear cart")
		return
	}
	response.Success(w, nil)
}
