package domain

import "time"

// Order statuses.
const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Order sources.
const (
	SourceB2B = "b2b"
	SourceB2C = "b2c"
)

// Order is a placed order from either sales channel.
type Order struct {
	OrderID       string       `json:"id" dynamodbav:"order_id"`
	OrderNumber   string       `json:"order_number" dynamodbav:"order_number"`
	UserID        string       `json:"user_id,omitempty" dynamodbav:"user_id"`
	B2CCustomerID string       `json:"b2c_customer_id,omitempty" dynamodbav:"b2c_customer_id"`
	Source        string       `json:"source" dynamodbav:"source"`
	Status        string       `json:"status" dynamodbav:"status"`
	Items         []OrderItem  `json:"items" dynamodbav:"items"`
	Subtotal      float64      `json:"subtotal" dynamodbav:"subtotal"`
	Shipping      float64      `json:"shipping" dynamodbav:"shipping"`
	VAT           float64      `json:"vat" dynamodbav:"vat"`
	Total         float64      `json:"total" dynamodbav:"total"`
	CustomerInfo  CustomerInfo `json:"customer_info" dynamodbav:"customer_info"`
	AffiliateCode string       `json:"affiliate_code,omitempty" dynamodbav:"affiliate_code"`
	TrackingURL   *string      `json:"tracking_url,omitempty" dynamodbav:"tracking_url"`
	CreatedAt     time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time    `json:"updated" dynamodbav:"updated_at"`
}

type OrderItem struct {
	ProductID string  `json:"product_id" dynamodbav:"product_id"`
	Name      string  `json:"name" dynamodbav:"name"`
	Color     string  `json:"color,omitempty" dynamodbav:"color"`
	Size      string  `json:"size,omitempty" dynamodbav:"size"`
	Quantity  int     `json:"quantity" dynamodbav:"quantity"`
	Price     float64 `json:"price" dynamodbav:"price"`
}

// CustomerInfo is the denormalized recipient block carried on orders and
// email contexts.
type CustomerInfo struct {
	Email string `json:"email" dynamodbav:"email"`
	Name  string `json:"name" dynamodbav:"name"`
}

type CreateOrderRequest struct {
	UserID        string       `json:"user_id"`
	B2CCustomerID string       `json:"b2c_customer_id"`
	Source        string       `json:"source" validate:"required,oneof=b2b b2c"`
	Items         []OrderItem  `json:"items" validate:"required,min=1"`
	Subtotal      float64      `json:"subtotal"`
	Shipping      float64      `json:"shipping"`
	VAT           float64      `json:"vat"`
	Total         float64      `json:"total"`
	CustomerInfo  CustomerInfo `json:"customer_info" validate:"required"`
	AffiliateCode string       `json:"affiliate_code"`
}

type UpdateOrderStatusRequest struct {
	OrderID     string  `json:"order_id" validate:"required"`
	Status      string  `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
	TrackingURL *string `json:"tracking_url"`
}
