package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingAddress is the destination captured at checkout.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// PaymentResult stores the opaque gateway confirmation attached to a
// paid order.
type PaymentResult struct {
	GatewayOrderID string `json:"gateway_order_id"`
	PaymentID      string `json:"payment_id"`
	Signature      string `json:"signature"`
}

// Order is the durable record of a purchase. Item snapshots and the
// price breakdown are computed once at creation and never recomputed
// from live catalog state.
type Order struct {
	ID     uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID   `gorm:"column:user_id;type:uuid;not null;index"`
	Items  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	ShippingAddress ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod   string          `gorm:"column:payment_method;not null;default:'razorpay'"`

	ItemsPrice    decimal.Decimal `gorm:"column:items_price;type:numeric(10,2);not null"`
	TaxPrice      decimal.Decimal `gorm:"column:tax_price;type:numeric(10,2);not null"`
	ShippingPrice decimal.Decimal `gorm:"column:shipping_price;type:numeric(10,2);not null"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`

	IsPaid        bool           `gorm:"column:is_paid;not null;default:false"`
	PaidAt        *time.Time     `gorm:"column:paid_at"`
	PaymentResult *PaymentResult `gorm:"column:payment_result;type:jsonb;serializer:json"`

	IsDelivered bool       `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
