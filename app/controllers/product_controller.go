package controllers

import (
	"net/http"
	"strconv"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/app/services"
	"github.com/coldcutclub/storefront/pkg/response"
	"github.com/coldcutclub/storefront/pkg/router"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// Index handles GET /api/products. Supported query parameters:
// category, q (matches name, origin, and category), sort (price_asc or
// price_desc) and limit. Without any of them it returns the whole
// catalog, newest first.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repositories.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("q"),
		Sort:     q.Get("sort"),
	}
	if filter.Category != "" && !models.ValidCategory(filter.Category) {
		response.Error(w, http.StatusBadRequest, "Unknown category")
		return
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			response.Error(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = limit
	}

	products, err := c.products.List(r.Context(), filter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not load products")
		return
	}
	response.Success(w, products)
}

// Show handles GET /api/products/{id}. The path segment is either the
// numeric id or the product slug.
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	key := router.Param(r, "id")

	var (
		product *models.Product
		err     error
	)
	if id, perr := strconv.ParseUint(key, 10, 32); perr == nil {
		product, err = c.products.Get(r.Context(), uint(id))
	} else {
		product, err = c.products.GetBySlug(r.Context(), key)
	}
	if err != nil {
		response.NotFound(w, "Product not found")
		return
	}
	response.Success(w, product)
}
