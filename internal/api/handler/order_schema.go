package handler

import "github.com/storefront/storefront-api/internal/core/domain"

type orderItemRequest struct {
	Product  string  `json:"product"  validate:"required"`
	Name     string  `json:"name"     validate:"required"`
	Price    float64 `json:"price"    validate:"gte=0"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity" validate:"gt=0"`
}

type shippingInfoRequest struct {
	Address string `json:"address"  validate:"required"`
	City    string `json:"city"     validate:"required"`
	PhoneNo string `json:"phone_no" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required"`
	Country string `json:"country"  validate:"required"`
}

type paymentInfoRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type createOrderRequest struct {
	OrderItems     []orderItemRequest  `json:"order_items"     validate:"required,min=1,dive"`
	ShippingInfo   shippingInfoRequest `json:"shipping_info"`
	ItemsPrice     float64             `json:"items_price"     validate:"gte=0"`
	TaxAmount      float64             `json:"tax_amount"      validate:"gte=0"`
	ShippingAmount float64             `json:"shipping_amount" validate:"gte=0"`
	TotalAmount    float64             `json:"total_amount"    validate:"gte=0"`
	PaymentMethod  string              `json:"payment_method"  validate:"required,oneof=COD Card"`
	PaymentInfo    paymentInfoRequest  `json:"payment_info"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Processing Shipped Delivered"`
}

type orderResponse struct {
	Order *domain.Order `json:"order"`
}

type ordersResponse struct {
	Orders []*domain.Order `json:"orders"`
}

type updateOrderResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
}
