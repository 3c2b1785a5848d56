package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brightbasket/storefront-backend/pkg/db/models"
)

// ItemInput is one client-supplied order line. Price is taken as sent;
// totals are derived from it without consulting the live catalog.
type ItemInput struct {
	Product string  `json:"product" validate:"required,uuid4"`
	Name    string  `json:"name" validate:"required"`
	Qty     int     `json:"qty" validate:"required,min=1"`
	Price   float64 `json:"price" validate:"min=0"`
	Image   string  `json:"image"`
}

// ShippingAddressInput is the checkout destination payload.
type ShippingAddressInput struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// CreateOrderRequest is the order creation payload.
type CreateOrderRequest struct {
	Items           []ItemInput          `json:"items"`
	ShippingAddress ShippingAddressInput `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
}

// CreateGatewayOrderRequest names the unpaid order to mint a gateway
// order for.
type CreateGatewayOrderRequest struct {
	OrderID string `json:"orderId" validate:"required,uuid4"`
}

// GatewayOrderResponse is returned from the gateway order mint. Failure
// variants still carry the order id so the client can retry payment.
type GatewayOrderResponse struct {
	OrderID          uuid.UUID `json:"orderId"`
	GatewayOrderID   string    `json:"razorpayOrderId,omitempty"`
	AmountMinorUnits int64     `json:"amount,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	KeyID            string    `json:"keyId,omitempty"`
}

// VerifyPaymentRequest carries the gateway confirmation for an order.
type VerifyPaymentRequest struct {
	OrderID           string `json:"orderId" validate:"required,uuid4"`
	RazorpayOrderID   string `json:"razorpayOrderId" validate:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" validate:"required"`
	RazorpaySignature string `json:"razorpaySignature" validate:"required"`
}

// ItemDTO is the public order line shape.
type ItemDTO struct {
	ProductID uuid.UUID       `json:"product"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
}

// OrderDTO is the public order shape.
type OrderDTO struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"userId"`
	Items           []ItemDTO              `json:"items"`
	ShippingAddress ShippingAddressInput   `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal        `json:"itemsPrice"`
	TaxPrice        decimal.Decimal        `json:"taxPrice"`
	ShippingPrice   decimal.Decimal        `json:"shippingPrice"`
	TotalPrice      decimal.Decimal        `json:"totalPrice"`
	IsPaid          bool                   `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	PaymentResult   *models.PaymentResult  `json:"paymentResult,omitempty"`
	IsDelivered     bool                   `json:"isDelivered"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// FromModel maps a stored order onto its public shape.
func FromModel(order *models.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Qty:       item.Qty,
			Price:     item.Price,
			Image:     item.Image,
		})
	}
	return OrderDTO{
		ID:     order.ID,
		UserID: order.UserID,
		Items:  items,
		ShippingAddress: ShippingAddressInput{
			FullName:   order.ShippingAddress.FullName,
			Address:    order.ShippingAddress.Address,
			City:       order.ShippingAddress.City,
			PostalCode: order.ShippingAddress.PostalCode,
			Country:    order.ShippingAddress.Country,
			Phone:      order.ShippingAddress.Phone,
		},
		PaymentMethod: order.PaymentMethod,
		ItemsPrice:    order.ItemsPrice,
		TaxPrice:      order.TaxPrice,
		ShippingPrice: order.ShippingPrice,
		TotalPrice:    order.TotalPrice,
		IsPaid:        order.IsPaid,
		PaidAt:        order.PaidAt,
		PaymentResult: order.PaymentResult,
		IsDelivered:   order.IsDelivered,
		DeliveredAt:   order.DeliveredAt,
		CreatedAt:     order.CreatedAt,
	}
}

// FromModels maps a slice of stored orders.
func FromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
