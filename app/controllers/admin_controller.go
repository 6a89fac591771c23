package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/services"
	"github.com/coldcutclub/storefront/pkg/bind"
	"github.com/coldcutclub/storefront/pkg/response"
	"github.com/coldcutclub/storefront/pkg/router"
)

// AdminController serves the back office: order management and catalog
// maintenance. Routes using it sit behind the admin role guard.
type AdminController struct {
	orders   *services.OrderService
	products *services.ProductService
}

func NewAdminController(orders *services.OrderService, products *services.ProductService) *AdminController {
	return &AdminController{orders: orders, products: products}
}

// Dashboard handles GET /api/admin/dashboard: order counts by status.
func (c *AdminController) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := c.orders.Dashboard(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not load dashboard")
		return
	}
	response.Success(w, counts)
}

// Orders handles GET /api/admin/orders?status=pending.
func (c *AdminController) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.ListAll(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		if errors.Is(err, services.ErrUnknownStatus) {
			response.Error(w, http.StatusBadRequest, "Unknown order status")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not load orders")
		return
	}
	response.Success(w, orders)
}

// statusRequest deliberately leaves the value check to the service, which
// knows the full lifecycle.
type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status. The move must
// be a legal lifecycle step; anything else is rejected with 409.
func (c *AdminController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseUint(router.Param(r, "id"), 10, 32)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var in statusRequest
	if errs, bindErr := bind.JSON(r, &in); bindErr != nil {
		response.Error(w, http.StatusBadRequest, bindErr.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.orders.Transition(r.Context(), uint(orderID), in.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			response.NotFound(w, "Order not found")
		case errors.Is(err, models.ErrInvalidTransition):
			response.Error(w, http.StatusConflict, "That status change is not allowed")
		case errors.Is(err, services.ErrUnknownStatus):
			response.Error(w, http.StatusBadRequest, "Unknown order status")
		default:
			response.Error(w, http.StatusInternalServerError, "Could not update order")
		}
		return
	}
	response.Success(w, order)
}

// CreateProduct handles POST /api/admin/products.
func (c *AdminController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.products.Create(r.Context(), in)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not create product")
		return
	}
	response.Created(w, product)
}

// UpdateProduct handles PUT /api/admin/products/{id}.
func (c *AdminController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(router.Param(r, "id"), 10, 32)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var in services.ProductInput
	if errs, bindErr := bind.JSON(r, &in); bindErr != nil {
		response.Error(w, http.StatusBadRequest, bindErr.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.products.Update(r.Context(), uint(id), in)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			response.NotFound(w, "Product not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not update product")
		return
	}
	response.Success(w, product)
}

// DeleteProduct handles DELETE /api/admin/products/{id}.
func (c *AdminController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(router.Param(r, "id"), 10, 32)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := c.products.Delete(r.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			response.NotFound(w, "Product not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not delete product")
		return
	}
	response.Success(w, nil)
}

const maxImageBytes = 8 << 20

// UploadProductImage handles POST /api/admin/products/{id}/image with a
// multipart "image" field.
func (c *AdminController) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(router.Param(r, "id"), 10, 32)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	product, err := c.products.AttachImage(r.Context(), uint(id), header.Filename, file)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			response.NotFound(w, "Product not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not store image")
		return
	}
	response.Success(w, product)
}
