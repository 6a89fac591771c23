package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/coldcutclub/storefront/app/models"
)

// OrderRepository persists orders and their lines.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// DB exposes the underlying handle so the checkout service can open a
// transaction spanning orders and cart rows.
func (r *OrderRepository) DB() *gorm.DB { return r.db }

// CreateTx inserts the order and its items inside tx. Items are saved via
// the association so OrderID is filled in by gorm.
func (r *OrderRepository) CreateTx(tx *gorm.DB, order *models.Order) error {
	return tx.Create(order).Error
}

// TrackingNumberExists reports whether a tracking number is already taken.
func (r *OrderRepository) TrackingNumberExists(ctx context.Context, tracking string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("tracking_number = ?", tracking).
		Count(&n).Error
	return n > 0, err
}

// Find returns the order with its items.
func (r *OrderRepository) Find(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByTracking returns the order matching a tracking number, with items.
func (r *OrderRepository) FindByTracking(ctx context.Context, tracking string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tracking_number = ?", tracking).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns a user's orders, newest first, with items.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// ListAll returns orders for the back office, newest first, optionally
// filtered by status.
func (r *OrderRepository) ListAll(ctx context.Context, status string) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []models.Order
	err := q.Find(&orders).Error
	return orders, err
}

// UpdateStatusGuarded moves an order to newStatus only if the lifecycle
// permits the move from the order's current status. The check and the
// write happen in one transaction so concurrent updates cannot skip steps.
// The returned order still carries the status it had before the move; on
// ErrInvalidTransition it is returned alongside the error so callers can
// report the rejected from-state.
func (r *OrderRepository) UpdateStatusGuarded(ctx context.Context, id uint, newStatus string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			return err
		}
		if !models.CanTransition(order.Status, newStatus) {
			return models.ErrInvalidTransition
		}
		return tx.Model(&models.Order{}).Where("id = ?", id).
			Update("status", newStatus).Error
	})
	if errors.Is(err, models.ErrInvalidTransition) {
		return &order, err
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CountByStatus returns order counts per status, for the admin dashboard.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

// IsNotFound reports whether err is the gorm record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
