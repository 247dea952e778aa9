package domain

import "time"

// OrderStatus represents the fulfillment state of an order.
type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
)

const (
	PaymentCOD  = "COD"
	PaymentCard = "Card"
)

// validTransitions only ever moves an order toward Delivered.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderProcessing: {OrderShipped, OrderDelivered},
	OrderShipped:    {OrderDelivered},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderProcessing, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is one product/quantity pair embedded in an order.
type OrderItem struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
}

// ShippingInfo is the delivery address of an order.
type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	PhoneNo string `json:"phone_no"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// PaymentInfo carries the payment confirmation reported by the client.
type PaymentInfo struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

// OrderOwner is the subset of the owning user attached to order details.
type OrderOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order is a purchase record.
type Order struct {
	ID             string       `json:"id"`
	Items          []OrderItem  `json:"order_items"`
	ShippingInfo   ShippingInfo `json:"shipping_info"`
	ItemsPrice     float64      `json:"items_price"`
	TaxAmount      float64      `json:"tax_amount"`
	ShippingAmount float64      `json:"shipping_amount"`
	TotalAmount    float64      `json:"total_amount"`
	PaymentMethod  string       `json:"payment_method"`
	PaymentInfo    PaymentInfo  `json:"payment_info"`
	Status         OrderStatus  `json:"order_status"`
	UserID         string       `json:"user"`
	Owner          *OrderOwner  `json:"owner,omitempty"`
	StockDeducted  bool         `json:"-"`
	DeliveredAt    *time.Time   `json:"delivered_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// StatusChange is the write applied by a fulfillment status update.
type StatusChange struct {
	OrderID     string
	From        OrderStatus
	To          OrderStatus
	DeliveredAt *time.Time
	// DeductStock asks the store to decrement stock for Items in the same
	// transaction as the status write.
	DeductStock bool
	Items       []OrderItem
}
