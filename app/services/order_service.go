package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/pkg/event"
	"github.com/coldcutclub/storefront/pkg/metrics"
)

// EventOrderStatusChanged fires after a status transition commits, with a
// *StatusChange payload.
const EventOrderStatusChanged = "order.status_changed"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrBadTracking   = errors.New("malformed tracking number")
	ErrUnknownStatus = errors.New("unknown order status")
)

var trackingPattern = regexp.MustCompile(`^CC-\d{3}-\d{3}-\d{3}$`)

// StatusChange is the payload of EventOrderStatusChanged.
type StatusChange struct {
	OrderID        uint   `json:"order_id"`
	TrackingNumber string `json:"tracking_number"`
	From           string `json:"from"`
	To             string `json:"to"`
}

// TrackingView is what the public tracking page shows: order progress and
// frozen lines, with internal ids withheld.
type TrackingView struct {
	TrackingNumber string             `json:"tracking_number"`
	Status         string             `json:"status"`
	Step           int                `json:"step"`
	Cancelled      bool               `json:"cancelled"`
	CustomerName   string             `json:"customer_name"`
	DeliveryMethod string             `json:"delivery_method"`
	Items          []models.OrderItem `json:"items"`
	Subtotal       float64            `json:"subtotal"`
	ShippingFee    float64            `json:"shipping_fee"`
	TaxAmount      float64            `json:"tax_amount"`
	Total          float64            `json:"total"`
	PlacedAt       string             `json:"placed_at"`
}

// OrderService serves order history, tracking lookups, and the guarded
// status machine used by the back office. The product repository is
// optional; when present, order history lines are enriched with the live
// product's image and portion.
type OrderService struct {
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
}

func NewOrderService(orders *repositories.OrderRepository, products *repositories.ProductRepository) *OrderService {
	return &OrderService{orders: orders, products: products}
}

// Track looks an order up by tracking number and projects it for the
// public tracking page. Lookup is case-insensitive on input: the number
// is uppercased and trimmed before matching.
func (s *OrderService) Track(ctx context.Context, tracking string) (*TrackingView, error) {
	tracking = strings.ToUpper(strings.TrimSpace(tracking))
	if !trackingPattern.MatchString(tracking) {
		return nil, ErrBadTracking
	}

	order, err := s.orders.FindByTracking(ctx, tracking)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	view := projectTracking(order)
	return &view, nil
}

func projectTracking(order *models.Order) TrackingView {
	return TrackingView{
		TrackingNumber: order.TrackingNumber,
		Status:         order.Status,
		Step:           models.StatusStep(order.Status),
		Cancelled:      order.Status == models.StatusCancelled,
		CustomerName:   order.CustomerName(),
		DeliveryMethod: order.DeliveryMethod,
		Items:          order.Items,
		Subtotal:       Round2(order.Subtotal),
		ShippingFee:    Round2(order.ShippingFee),
		TaxAmount:      Round2(order.TaxAmount),
		Total:          Round2(order.Total),
		PlacedAt:       order.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// History returns the user's own orders, newest first. Lines whose
// product still exists carry the product's current image and portion;
// lines for deleted products keep only their frozen snapshot.
func (s *OrderService) History(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.enrichItems(ctx, orders)
	return orders, nil
}

func (s *OrderService) enrichItems(ctx context.Context, orders []models.Order) {
	if s.products == nil {
		return
	}
	seen := map[uint]bool{}
	var ids []uint
	for i := range orders {
		for _, it := range orders[i].Items {
			if it.ProductID != nil && !seen[*it.ProductID] {
				seen[*it.ProductID] = true
				ids = append(ids, *it.ProductID)
			}
		}
	}
	if len(ids) == 0 {
		return
	}
	byID, err := s.products.FindMany(ctx, ids)
	if err != nil {
		return
	}
	for i := range orders {
		for j := range orders[i].Items {
			it := &orders[i].Items[j]
			if it.ProductID == nil {
				continue
			}
			if p, ok := byID[*it.ProductID]; ok {
				it.ImageURL = p.ImageURL
				it.Portion = p.Portion
			}
		}
	}
}

// Get returns one order, restricted to its owner.
func (s *OrderService) Get(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	single := []models.Order{*order}
	s.enrichItems(ctx, single)
	return &single[0], nil
}

// ListAll returns every order for the back office, optionally filtered by
// status.
func (s *OrderService) ListAll(ctx context.Context, status string) ([]models.Order, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, ErrUnknownStatus
	}
	return s.orders.ListAll(ctx, status)
}

// Transition moves an order to newStatus under the lifecycle rules, then
// fires EventOrderStatusChanged. Invalid moves return
// models.ErrInvalidTransition with the order left untouched.
func (s *OrderService) Transition(ctx context.Context, orderID uint, newStatus string) (*models.Order, error) {
	if !models.ValidStatus(newStatus) {
		return nil, ErrUnknownStatus
	}

	order, err := s.orders.UpdateStatusGuarded(ctx, orderID, newStatus)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		if errors.Is(err, models.ErrInvalidTransition) {
			from := ""
			if order != nil {
				from = order.Status
			}
			metrics.OrderStatusTransitions.WithLabelValues(from, newStatus, "rejected").Inc()
		}
		return nil, err
	}

	from := order.Status
	metrics.OrderStatusTransitions.WithLabelValues(from, newStatus, "applied").Inc()
	event.Fire(EventOrderStatusChanged, &StatusChange{
		OrderID:        order.ID,
		TrackingNumber: order.TrackingNumber,
		From:           from,
		To:             newStatus,
	})

	order.Status = newStatus
	return order, nil
}

// Cancel is the customer-facing cancellation: only the owner may cancel,
// and only while the order has not shipped.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.StatusShipped || order.Status == models.StatusDelivered {
		return nil, models.ErrInvalidTransition
	}
	return s.Transition(ctx, orderID, models.StatusCancelled)
}

// Dashboard aggregates order counts per status for the admin home screen.
func (s *OrderService) Dashboard(ctx context.Context) (map[string]int64, error) {
	return s.orders.CountByStatus(ctx)
}
