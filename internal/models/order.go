package models

import "time"

// Order statuses as reported by the backend.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses as reported by the backend.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// OrderItem is one line of an order creation request: only the identity key
// and quantity travel to the backend, which re-prices from the catalog.
type OrderItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// OrderLine is a priced line within an order as returned by the backend.
type OrderLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// Order is server-owned: every field here is computed by the backend. The
// client only ever creates orders and drives status transitions (cancel)
// through dedicated endpoints.
type Order struct {
	ID              string      `json:"id"`
	Items           []OrderLine `json:"items"`
	ShippingAddress Address     `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	Subtotal        float64     `json:"subtotal"`
	ShippingCost    float64     `json:"shippingCost"`
	Tax             float64     `json:"tax"`
	Total           float64     `json:"total"`
	OrderStatus     string      `json:"orderStatus"`
	PaymentStatus   string      `json:"paymentStatus"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// CreateOrderRequest is the payload for placing a new order.
type CreateOrderRequest struct {
	Items           []OrderItem `json:"items" validate:"required,min=1,dive"`
	ShippingAddress Address     `json:"shippingAddress" validate:"required"`
	PaymentMethod   string      `json:"paymentMethod" validate:"required"`
}

// Address is a postal address from the account's address book. The server
// enforces that at most one address per user is the default; the client must
// not assume the flag is consistent until the server confirms a write.
type Address struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Country   string `json:"country" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	IsDefault bool   `json:"isDefault"`
}
