package ports

import (
	"context"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// AuthService is the credential manager used by the auth handlers and middleware.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, rawToken, password, confirmPassword string) (string, *domain.User, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (string, *domain.User, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// UpdateUserInput carries admin-editable user fields.
type UpdateUserInput struct {
	Name  string
	Email string
	Role  string
}

// UserService covers profile and admin user management.
type UserService interface {
	Profile(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*domain.User, error)
	UploadAvatar(ctx context.Context, id, dataURI string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// OrderItemInput is one requested line item.
type OrderItemInput struct {
	Product  string
	Name     string
	Price    float64
	Image    string
	Quantity int
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	Items          []OrderItemInput
	ShippingInfo   domain.ShippingInfo
	ItemsPrice     float64
	TaxAmount      float64
	ShippingAmount float64
	TotalAmount    float64
	PaymentMethod  string
	PaymentInfo    domain.PaymentInfo
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	Create(ctx context.Context, userID string, input CreateOrderInput) (*domain.Order, error)
	MyOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

// SalesService produces the gap-filled sales report.
type SalesService interface {
	ComputeSales(ctx context.Context, startDate, endDate string) (*domain.SalesReport, error)
}

// CreateProductInput carries the fields of a new catalog product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Seller      string
	Stock       int
	Images      []domain.Image
}

// ProductPage is one page of the catalog listing.
type ProductPage struct {
	Items      []*domain.Product
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CatalogService defines catalog operations.
type CatalogService interface {
	List(ctx context.Context, filter ListProductsFilter) (*ProductPage, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
}

// Clock returns the current time; services take one so tests can pin it.
type Clock func() time.Time
