// Package services holds the storefront's business rules. Controllers stay
// thin; everything that must be true regardless of transport lives here.
package services

import (
	"context"
	"errors"
	"math"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/pkg/event"
)

// Pricing constants. Shipping is flat per order; tax applies to the goods
// subtotal only, never to shipping.
const (
	ShippingStandard = 12.00
	ShippingExpress  = 24.00
	TaxRate          = 0.05
)

// EventCartChanged fires after any cart mutation, with the user id payload.
const EventCartChanged = "cart.changed"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrBadQuantity     = errors.New("quantity must be at least 1")
)

// Totals is the money summary of a cart or order.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shipping_fee"`
	TaxAmount   float64 `json:"tax_amount"`
	Total       float64 `json:"total"`
	ItemCount   int     `json:"item_count"`
}

// ComputeTotals derives the money summary from cart lines and a delivery
// method. Pure function: same lines and method always give the same totals.
// Express delivery costs more; any other method is priced as standard.
func ComputeTotals(items []models.CartItem, deliveryMethod string) Totals {
	t := Totals{}
	for _, it := range items {
		t.Subtotal += it.Product.Price * float64(it.Quantity)
		t.ItemCount += it.Quantity
	}
	if deliveryMethod == models.DeliveryExpress {
		t.ShippingFee = ShippingExpress
	} else {
		t.ShippingFee = ShippingStandard
	}
	t.TaxAmount = t.Subtotal * TaxRate
	t.Total = t.Subtotal + t.ShippingFee + t.TaxAmount
	return t
}

// Round2 rounds to two decimal places for display. Stored amounts keep
// full precision; rounding happens at the edge.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CartView is a cart plus its running totals, as returned to clients.
type CartView struct {
	Items  []models.CartItem `json:"items"`
	Totals Totals            `json:"totals"`
}

// CartService wraps cart mutations with product checks and events.
type CartService struct {
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartService(carts *repositories.CartRepository, products *repositories.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// View returns the cart with totals priced at standard delivery. The
// checkout page reprices once a delivery method is chosen.
func (s *CartService) View(ctx context.Context, userID uint) (*CartView, error) {
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CartView{Items: items, Totals: ComputeTotals(items, models.DeliveryStandard)}, nil
}

// Count returns the number of units in the cart, for the header badge.
func (s *CartService) Count(ctx context.Context, userID uint) (int, error) {
	return s.carts.CountUnits(ctx, userID)
}

// Add puts quantity of a product into the cart, merging duplicate lines.
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrBadQuantity
	}
	if _, err := s.products.Find(ctx, productID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	item, err := s.carts.Upsert(ctx, userID, productID, quantity)
	if err != nil {
		return nil, err
	}
	event.Fire(EventCartChanged, userID)
	return item, nil
}

// UpdateQuantity sets an exact quantity on a cart line. Zero removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 0 {
		return nil, ErrBadQuantity
	}
	if quantity == 0 {
		if err := s.carts.Remove(ctx, userID, itemID); err != nil {
			return nil, err
		}
		event.Fire(EventCartChanged, userID)
		return nil, nil
	}
	item, err := s.carts.SetQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return nil, err
	}
	event.Fire(EventCartChanged, userID)
	return item, nil
}

// Remove deletes a cart line.
func (s *CartService) Remove(ctx context.Context, userID, itemID uint) error {
	if err := s.carts.Remove(ctx, userID, itemID); err != nil {
		return err
	}
	event.Fire(EventCartChanged, userID)
	return nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return err
	}
	event.Fire(EventCartChanged, userID)
	return nil
}
