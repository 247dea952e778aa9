package ports

import (
	"context"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// DailyBucket is one calendar day of aggregated orders.
type DailyBucket struct {
	Date      string
	Sales     float64
	NumOrders int
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	Delete(ctx context.Context, id string) error

	// ApplyStatusChange writes the new status atomically, but only while the
	// stored order is still in change.From (and, when change.DeductStock is
	// set, has not had its stock taken). Otherwise it returns
	// ErrOrderDelivered or ErrOrderStatusChanged. With DeductStock every item's
	// product stock is decremented in the same transaction; a missing product
	// or insufficient stock aborts everything.
	ApplyStatusChange(ctx context.Context, change domain.StatusChange) error

	// DailySales groups orders created in [from, to] by UTC calendar day.
	DailySales(ctx context.Context, from, to time.Time) ([]DailyBucket, error)
}
