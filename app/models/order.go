package models

import (
	"errors"
	"strings"
	"time"
)

// Order statuses. Orders move pending → confirmed → shipped → delivered,
// one step at a time. Cancellation is allowed from any non-terminal status
// and is itself terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Delivery methods.
const (
	DeliveryStandard = "standard"
	DeliveryExpress  = "express"
)

// Payment methods. Recorded for reference only; no charge is made.
const (
	PaymentCard = "card"
	PaymentQR   = "qr"
	PaymentBank = "bank"
)

// ErrInvalidTransition is returned when a status change is not permitted
// by the order lifecycle.
var ErrInvalidTransition = errors.New("invalid order status transition")

// Order is a placed order with its frozen totals and delivery details.
type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UserID         uint        `gorm:"index" json:"user_id"`
	TrackingNumber string      `gorm:"size:20;uniqueIndex;not null" json:"tracking_number"`
	Status         string      `gorm:"size:20;default:pending;index" json:"status"`
	FirstName      string      `gorm:"size:100;not null" json:"first_name"`
	LastName       string      `gorm:"size:100;not null" json:"last_name"`
	Email          string      `gorm:"size:255;not null" json:"email"`
	Phone          string      `gorm:"size:50" json:"phone"`
	Address        string      `gorm:"size:500;not null" json:"address"`
	City           string      `gorm:"size:100;not null" json:"city"`
	Postcode       string      `gorm:"size:20" json:"postcode"`
	Note           string      `gorm:"size:500" json:"note"`
	DeliveryMethod string      `gorm:"size:20;not null" json:"delivery_method"`
	PaymentMethod  string      `gorm:"size:20;not null" json:"payment_method"`
	Subtotal       float64     `gorm:"not null" json:"subtotal"`
	ShippingFee    float64     `gorm:"not null" json:"shipping_fee"`
	TaxAmount      float64     `gorm:"not null" json:"tax_amount"`
	Total          float64     `gorm:"not null" json:"total"`
	Items          []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// OrderItem is a line frozen at checkout time. Name and price are copied
// from the product so later catalog edits do not rewrite order history.
// ProductID is nullable: the live product may be deleted after the order,
// in which case the snapshot stands alone.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"index;not null" json:"order_id"`
	ProductID   *uint   `gorm:"index" json:"product_id,omitempty"`
	ProductName string  `gorm:"size:255;not null" json:"product_name"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	LineTotal   float64 `gorm:"not null" json:"line_total"`

	// Live-catalog extras, filled in when the product still exists.
	ImageURL string `gorm:"-" json:"image_url,omitempty"`
	Portion  string `gorm:"-" json:"portion,omitempty"`
}

// CustomerName joins the shipping name fields for display.
func (o *Order) CustomerName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// statusRank orders the forward lifecycle. Cancelled sits outside it.
var statusRank = map[string]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusShipped:   2,
	StatusDelivered: 3,
}

// CanTransition reports whether an order may move from one status to the
// next. Forward moves advance exactly one step; cancellation is allowed
// from any status except delivered and cancelled.
func CanTransition(from, to string) bool {
	if to == StatusCancelled {
		return from != StatusDelivered && from != StatusCancelled
	}
	fr, okFrom := statusRank[from]
	tr, okTo := statusRank[to]
	if !okFrom || !okTo {
		return false
	}
	return tr == fr+1
}

// StatusStep maps a status to its position on the customer progress bar:
// 0 pending, 1 confirmed, 2 shipped, 3 delivered. Cancelled orders are
// off the bar and return -1.
func StatusStep(status string) int {
	if r, ok := statusRank[status]; ok {
		return r
	}
	return -1
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}
