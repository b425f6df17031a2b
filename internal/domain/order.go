package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of one order line
const MaxLineQuantity = 999

// MaxAmount is the largest amount a DECIMAL(10,2) column holds
var MaxAmount = decimal.RequireFromString("99999999.99")

// PaymentMethod is the manual payment class chosen at checkout
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bonifico"
	PaymentMethodPostePay     PaymentMethod = "postepay"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodBankTransfer || m == PaymentMethodPostePay
}

// PaymentStatus tracks the manual payment reconciliation
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// OrderStatus tracks fulfillment.
// pending_payment -> paid -> shipped -> delivered, cancelled from anywhere.
// Transitions are not enforced; admins may set any value at any time.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPendingPayment, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingAddress is persisted as JSON; the key names are read by the
// tracking page and must not change.
type ShippingAddress struct {
	Street     string `json:"via" validate:"required,min=5"`
	City       string `json:"città" validate:"required,min=2"`
	PostalCode string `json:"cap" validate:"required,min=5"`
	Province   string `json:"provincia" validate:"required,min=2"`
}

// Order represents a placed order
type Order struct {
	ID              int64           `json:"id" db:"id"`
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	CustomerName    string          `json:"customerName" db:"customer_name"`
	CustomerEmail   string          `json:"customerEmail" db:"customer_email"`
	CustomerPhone   string          `json:"customerPhone,omitempty" db:"customer_phone"`
	ShippingAddress ShippingAddress `json:"shippingAddress" db:"shipping_address"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	OrderStatus     OrderStatus     `json:"orderStatus" db:"order_status"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	Items           []*OrderItem    `json:"items,omitempty"`
}

// OrderItem is a denormalized snapshot of one order line
type OrderItem struct {
	ID           int64           `json:"id" db:"id"`
	OrderID      int64           `json:"orderId" db:"order_id"`
	ProductID    int64           `json:"productId" db:"product_id"`
	ProductName  string          `json:"productName" db:"product_name"`
	ProductPrice decimal.Decimal `json:"productPrice" db:"product_price"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// StatusUpdate is a partial order status change; nil fields are left as is
type StatusUpdate struct {
	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty"`
	OrderStatus   *OrderStatus   `json:"orderStatus,omitempty"`
}

// Empty reports whether the update changes nothing
func (u StatusUpdate) Empty() bool {
	return u.PaymentStatus == nil && u.OrderStatus == nil
}

// OrderDetails are the customer fields of an order submission
type OrderDetails struct {
	CustomerName    string          `json:"customerName" validate:"required,min=2"`
	CustomerEmail   string          `json:"customerEmail" validate:"required,email"`
	CustomerPhone   string          `json:"customerPhone" validate:"required,min=8"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	TotalAmount     decimal.Decimal `json:"totalAmount" validate:"gt=0,lte=99999999.99"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" validate:"required,oneof=bonifico postepay"`
}

// OrderLine is one requested product and quantity of an order submission
type OrderLine struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1,lte=999"`
}

// OrderSubmission is the request shape accepted by every order backend
type OrderSubmission struct {
	Order OrderDetails `json:"order"`
	Items []OrderLine  `json:"items" validate:"required,min=1,dive"`
}

// PaymentInfo holds the bank coordinates shown to the customer
type PaymentInfo struct {
	IBAN        string `json:"IBAN" yaml:"iban"`
	BIC         string `json:"BIC" yaml:"bic"`
	Bank        string `json:"Bank" yaml:"bank"`
	Beneficiary string `json:"Beneficiary" yaml:"beneficiary"`
}

// OrderConfirmation is returned by an order backend after a submission.
// Consumers only rely on OrderNumber and TotalAmount; the remaining fields
// are filled by the stateless confirmer.
type OrderConfirmation struct {
	Success     bool         `json:"success,omitempty"`
	OrderNumber string       `json:"orderNumber"`
	TotalAmount string       `json:"totalAmount"`
	PaymentInfo *PaymentInfo `json:"paymentInfo,omitempty"`
	Message     string       `json:"message,omitempty"`
}
