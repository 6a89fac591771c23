// Package jobs defines the background jobs dispatched by the storefront.
package jobs

import (
	"fmt"

	"github.com/coldcutclub/storefront/pkg/mail"
	"github.com/coldcutclub/storefront/pkg/queue"
)

// OrderConfirmationJob emails the customer after a successful checkout.
type OrderConfirmationJob struct {
	OrderID        uint    `json:"order_id"`
	TrackingNumber string  `json:"tracking_number"`
	Email          string  `json:"email"`
	CustomerName   string  `json:"customer_name"`
	Total          float64 `json:"total"`
}

// RegisterAll registers every job type with the queue. Call once at boot.
func RegisterAll() {
	queue.Register("*jobs.OrderConfirmationJob", func() queue.Job {
		return &OrderConfirmationJob{}
	})
}

func (j *OrderConfirmationJob) Handle() error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Thanks for your order! We're getting it ready now.</p>"+
			"<p>Your tracking number is <strong>%s</strong>. Use it any time "+
			"on the tracking page to see where your order is.</p>"+
			"<p>Order total: <strong>%.2f</strong></p>"+
			"<p>ColdCut Club</p>",
		j.CustomerName, j.TrackingNumber, j.Total,
	)

	return mail.New().
		To(j.Email).
		Subject(fmt.Sprintf("Order confirmed: %s", j.TrackingNumber)).
		HTML(body).
		Send()
}
