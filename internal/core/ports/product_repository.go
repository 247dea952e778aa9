package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// ListProductsFilter carries the query parameters for the catalog listing.
type ListProductsFilter struct {
	Keyword  string // optional: case-insensitive match on name
	Category string // optional
	Page     int    // 1-based
	Limit    int
}

// ProductRepository defines persistence operations for catalog products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ListProductsFilter) ([]*domain.Product, int64, error)
	// ReplaceAll deletes every product and inserts products.
	ReplaceAll(ctx context.Context, products []*domain.Product) error
}
