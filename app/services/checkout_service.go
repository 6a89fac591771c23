package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"github.com/coldcutclub/storefront/app/jobs"
	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/pkg/event"
	"github.com/coldcutclub/storefront/pkg/logger"
	"github.com/coldcutclub/storefront/pkg/metrics"
	"github.com/coldcutclub/storefront/pkg/queue"
)

// EventOrderPlaced fires after an order commits, with the *models.Order.
const EventOrderPlaced = "order.placed"

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrBadDelivery        = errors.New("unknown delivery method")
	ErrBadPayment         = errors.New("unknown payment method")
	ErrProductUnavailable = errors.New("a carted product is no longer available")
	errTrackingInUse      = errors.New("tracking number already in use")
)

const maxTrackingRetry = 5

// CheckoutInput carries the shipping form collected at checkout. First
// name, last name, address, and city are required; postcode is not.
// Email is optional too: when blank, the confirmation goes to the
// account email.
type CheckoutInput struct {
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	Email          string `json:"email" validate:"nullable,email"`
	Phone          string `json:"phone" validate:"nullable,max=50"`
	Address        string `json:"address" validate:"required,max=500"`
	City           string `json:"city" validate:"required,max=100"`
	Postcode       string `json:"postcode" validate:"nullable,max=20"`
	Note           string `json:"note" validate:"max=500"`
	DeliveryMethod string `json:"delivery_method" validate:"required,in=standard,express"`
	PaymentMethod  string `json:"payment_method" validate:"required,in=card,qr,bank"`
}

// CheckoutService assembles orders from carts.
type CheckoutService struct {
	orders *repositories.OrderRepository
	carts  *repositories.CartRepository
	users  *repositories.UserRepository
}

func NewCheckoutService(orders *repositories.OrderRepository, carts *repositories.CartRepository, users *repositories.UserRepository) *CheckoutService {
	return &CheckoutService{orders: orders, carts: carts, users: users}
}

// PlaceOrder turns the user's cart into an order. The order row, its item
// rows, and the cart clear all commit in one transaction; a failure at any
// point leaves the cart untouched and no partial order behind.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uint, in CheckoutInput) (*models.Order, error) {
	if in.DeliveryMethod != models.DeliveryStandard && in.DeliveryMethod != models.DeliveryExpress {
		return nil, ErrBadDelivery
	}
	switch in.PaymentMethod {
	case models.PaymentCard, models.PaymentQR, models.PaymentBank:
	default:
		return nil, ErrBadPayment
	}

	if in.Email == "" {
		user, err := s.users.Find(ctx, userID)
		if err != nil {
			return nil, err
		}
		in.Email = user.Email
	}

	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, it := range items {
		// A deleted product preloads as a zero value; an order line
		// without a name or price must never be written.
		if it.Product.ID == 0 {
			return nil, ErrProductUnavailable
		}
	}

	totals := ComputeTotals(items, in.DeliveryMethod)

	order := &models.Order{
		UserID:         userID,
		Status:         models.StatusPending,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		Address:        in.Address,
		City:           in.City,
		Postcode:       in.Postcode,
		Note:           in.Note,
		DeliveryMethod: in.DeliveryMethod,
		PaymentMethod:  in.PaymentMethod,
		Subtotal:       totals.Subtotal,
		ShippingFee:    totals.ShippingFee,
		TaxAmount:      totals.TaxAmount,
		Total:          totals.Total,
	}
	for _, it := range items {
		productID := it.ProductID
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   &productID,
			ProductName: it.Product.Name,
			UnitPrice:   it.Product.Price,
			Quantity:    it.Quantity,
			LineTotal:   it.Product.Price * float64(it.Quantity),
		})
	}

	err = s.orders.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tracking, err := s.freshTrackingNumber(ctx)
		if err != nil {
			return err
		}
		order.TrackingNumber = tracking

		if err := s.orders.CreateTx(tx, order); err != nil {
			return err
		}
		return s.carts.ClearTx(tx, userID)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.WithLabelValues(order.DeliveryMethod).Inc()
	event.Fire(EventOrderPlaced, order)

	if err := queue.Dispatch(&jobs.OrderConfirmationJob{
		OrderID:        order.ID,
		TrackingNumber: order.TrackingNumber,
		Email:          order.Email,
		CustomerName:   order.CustomerName(),
		Total:          Round2(order.Total),
	}); err != nil {
		// The order is committed; a confirmation email miss is not fatal.
		logger.Error("checkout: dispatching confirmation job", "order_id", order.ID, "error", err)
	}

	return order, nil
}

// freshTrackingNumber generates CC-XXX-XXX-XXX tracking numbers until one
// is unused. The unique index on orders.tracking_number is the final word
// if two checkouts race past this check.
func (s *CheckoutService) freshTrackingNumber(ctx context.Context) (string, error) {
	for i := 0; i < maxTrackingRetry; i++ {
		tracking, err := generateTrackingNumber()
		if err != nil {
			return "", err
		}
		taken, err := s.orders.TrackingNumberExists(ctx, tracking)
		if err != nil {
			return "", err
		}
		if !taken {
			return tracking, nil
		}
	}
	return "", errTrackingInUse
}

func generateTrackingNumber() (string, error) {
	segs := make([]int64, 3)
	for i := range segs {
		n, err := rand.Int(rand.Reader, big.NewInt(1000))
		if err != nil {
			return "", err
		}
		segs[i] = n.Int64()
	}
	return fmt.Sprintf("CC-%03d-%03d-%03d", segs[0], segs[1], segs[2]), nil
}
