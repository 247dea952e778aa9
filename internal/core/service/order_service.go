package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type OrderService struct {
	orders ports.OrderRepository
	users  ports.UserRepository
	now    ports.Clock
	logger zerolog.Logger
}

func NewOrderService(orders ports.OrderRepository, users ports.UserRepository, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		users:  users,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// Create places a new order for userID. Orders always start in Processing.
func (s *OrderService) Create(ctx context.Context, userID string, input ports.CreateOrderInput) (*domain.Order, error) {
	if err := validateOrderInput(input); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, it := range input.Items {
		items = append(items, domain.OrderItem{
			Product:  it.Product,
			Name:     strings.TrimSpace(it.Name),
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}

	now := s.now()
	order, err := s.orders.Create(ctx, &domain.Order{
		Items:          items,
		ShippingInfo:   input.ShippingInfo,
		ItemsPrice:     input.ItemsPrice,
		TaxAmount:      input.TaxAmount,
		ShippingAmount: input.ShippingAmount,
		TotalAmount:    input.TotalAmount,
		PaymentMethod:  input.PaymentMethod,
		PaymentInfo:    input.PaymentInfo,
		Status:         domain.OrderProcessing,
		UserID:         userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create order")
		return nil, err
	}

	s.logger.Info().Str("order_id", order.ID).Str("user_id", userID).Float64("total", order.TotalAmount).Msg("order created")
	return order, nil
}

func (s *OrderService) MyOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Get returns the order with its owner's name and email attached. A deleted
// owner leaves Owner nil.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.FindByID(ctx, order.UserID)
	switch {
	case err == nil:
		order.Owner = &domain.OrderOwner{ID: owner.ID, Name: owner.Name, Email: owner.Email}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, fmt.Errorf("load order owner: %w", err)
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus moves an order forward. Stock for every line item is taken
// out on the first transition away from Processing, atomically with the
// status write.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderDelivered {
		return nil, domain.ErrOrderDelivered
	}

	next := domain.OrderStatus(status)
	if !next.Valid() {
		return nil, domain.Validationf("invalid order status %q", status)
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}

	change := domain.StatusChange{
		OrderID:     order.ID,
		From:        order.Status,
		To:          next,
		DeductStock: !order.StockDeducted,
		Items:       order.Items,
	}
	if next == domain.OrderDelivered {
		t := s.now()
		change.DeliveredAt = &t
	}

	if err := s.orders.ApplyStatusChange(ctx, change); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID).Str("to", string(next)).Msg("order status update rejected")
		return nil, err
	}

	order.Status = next
	order.DeliveredAt = change.DeliveredAt
	if change.DeductStock {
		order.StockDeducted = true
	}
	order.UpdatedAt = s.now()

	s.logger.Info().
		Str("order_id", order.ID).
		Str("from", string(change.From)).
		Str("to", string(next)).
		Bool("stock_deducted", change.DeductStock).
		Msg("order status updated")
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("order_id", id).Msg("order deleted")
	return nil
}

func validateOrderInput(input ports.CreateOrderInput) error {
	if len(input.Items) == 0 {
		return domain.Validation("order must contain at least one item")
	}
	for i, it := range input.Items {
		if strings.TrimSpace(it.Product) == "" {
			return domain.Validationf("item %d: product is required", i)
		}
		if it.Quantity <= 0 {
			return domain.Validationf("item %d: quantity must be positive", i)
		}
		if it.Price < 0 {
			return domain.Validationf("item %d: price must not be negative", i)
		}
	}

	si := input.ShippingInfo
	if blank(si.Address) || blank(si.City) || blank(si.PhoneNo) || blank(si.ZipCode) || blank(si.Country) {
		return domain.Validation("please enter complete shipping info")
	}

	for _, amount := range []float64{input.ItemsPrice, input.TaxAmount, input.ShippingAmount, input.TotalAmount} {
		if amount < 0 {
			return domain.Validation("order amounts must not be negative")
		}
	}

	switch input.PaymentMethod {
	case domain.PaymentCOD, domain.PaymentCard:
	default:
		return domain.Validationf("payment method must be %s or %s", domain.PaymentCOD, domain.PaymentCard)
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
