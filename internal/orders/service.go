package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/brightbasket/storefront-backend/pkg/config"
	"github.com/brightbasket/storefront-backend/pkg/db/models"
	pkgerrors "github.com/brightbasket/storefront-backend/pkg/errors"
	"github.com/brightbasket/storefront-backend/pkg/logger"
	"github.com/brightbasket/storefront-backend/pkg/razorpay"
)

// Gateway failure reasons surfaced to the client alongside the order id.
const (
	GatewayFailureMissingCredentials     = "gateway_credentials_missing"
	GatewayFailurePlaceholderCredentials = "gateway_credentials_placeholder"
	GatewayFailureError                  = "gateway_error"
)

// Service exposes order creation, the payment flow, and fulfillment.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error)
	GetOrder(ctx context.Context, requesterID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	ListAll(ctx context.Context) ([]OrderDTO, error)
	CreatePaymentOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*GatewayOrderResponse, error)
	VerifyPayment(ctx context.Context, userID uuid.UUID, req VerifyPaymentRequest) (*OrderDTO, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
}

type orderRepository interface {
	WithTx(tx *gorm.DB) *Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, result models.PaymentResult) error
	MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) error
}

type paymentGateway interface {
	KeyID() string
	CheckCredentials() error
	CreateOrder(ctx context.Context, params razorpay.OrderParams) (*razorpay.Order, error)
	VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool
}

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	orders  orderRepository
	carts   cartDeleter
	gateway paymentGateway
	tx      transactor
	pricing config.PricingConfig
	log     *logger.Logger
}

// cartDeleter is the slice of the cart repository the payment flow needs.
type cartDeleter interface {
	TxDeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	OrderRepo     orderRepository
	CartDeleter   cartDeleter
	Gateway       paymentGateway
	Transactor    transactor
	PricingConfig config.PricingConfig
	Logger        *logger.Logger
}

// NewService constructs an order service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.CartDeleter == nil {
		return nil, fmt.Errorf("cart deleter is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway is required")
	}
	if params.Transactor == nil {
		return nil, fmt.Errorf("transactor is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		orders:  params.OrderRepo,
		carts:   params.CartDeleter,
		gateway: params.Gateway,
		tx:      params.Transactor,
		pricing: params.PricingConfig,
		log:     params.Logger,
	}, nil
}

// CreateOrder validates the payload, computes the price breakdown, and
// persists the order unpaid. The gateway is never contacted here: a
// gateway outage must not lose the order.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error) {
	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}

	totals := ComputeTotals(req.Items, s.pricing)

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.Product)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item product id is invalid").
				WithDetails(map[string]string{"product": item.Product})
		}
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			ProductID: productID,
			Name:      item.Name,
			Qty:       item.Qty,
			Price:     decimalFromPrice(item.Price),
			Image:     item.Image,
		})
	}

	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = "razorpay"
	}

	order := &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Items:  items,
		ShippingAddress: models.ShippingAddress{
			FullName:   strings.TrimSpace(req.ShippingAddress.FullName),
			Address:    strings.TrimSpace(req.ShippingAddress.Address),
			City:       strings.TrimSpace(req.ShippingAddress.City),
			PostalCode: strings.TrimSpace(req.ShippingAddress.PostalCode),
			Country:    strings.TrimSpace(req.ShippingAddress.Country),
			Phone:      strings.TrimSpace(req.ShippingAddress.Phone),
		},
		PaymentMethod: paymentMethod,
		ItemsPrice:    totals.ItemsPrice,
		TaxPrice:      totals.TaxPrice,
		ShippingPrice: totals.ShippingPrice,
		TotalPrice:    totals.TotalPrice,
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	orderCtx := s.log.WithOrderID(ctx, created.ID.String())
	s.log.Info(orderCtx, "order created unpaid")

	dto := FromModel(created)
	return &dto, nil
}

func (s *service) GetOrder(ctx context.Context, requesterID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != requesterID {
		// Hidden rather than forbidden: non-owners cannot probe for
		// order existence.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return FromModels(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return FromModels(rows), nil
}

// CreatePaymentOrder mints a gateway order for the stored total. Every
// failure path still returns the order id: the order survives and the
// client retries payment against it.
func (s *service) CreatePaymentOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*GatewayOrderResponse, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}

	response := &GatewayOrderResponse{OrderID: order.ID}

	if err := s.gateway.CheckCredentials(); err != nil {
		reason := GatewayFailureMissingCredentials
		if errors.Is(err, razorpay.ErrPlaceholderCredentials) {
			reason = GatewayFailurePlaceholderCredentials
		}
		return response, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway is not configured").
			WithDetails(map[string]any{"reason": reason, "orderId": order.ID})
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, razorpay.OrderParams{
		AmountMinorUnits: MinorUnits(order.TotalPrice),
		Currency:         s.pricing.Currency,
		Receipt:          order.ID.String(),
		Notes:            map[string]string{"order_id": order.ID.String()},
	})
	if err != nil {
		return response, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order").
			WithDetails(map[string]any{"reason": GatewayFailureError, "orderId": order.ID})
	}

	response.GatewayOrderID = gatewayOrder.ID
	response.AmountMinorUnits = gatewayOrder.AmountMinorUnits
	response.Currency = gatewayOrder.Currency
	response.KeyID = s.gateway.KeyID()
	return response, nil
}

// VerifyPayment checks the gateway signature and, in one transaction,
// marks the order paid and deletes the user's cart.
func (s *service) VerifyPayment(ctx context.Context, userID uuid.UUID, req VerifyPaymentRequest) (*OrderDTO, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is invalid")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if !s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment signature verification failed")
	}

	paidAt := time.Now().UTC()
	result := models.PaymentResult{
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).MarkPaid(ctx, order.ID, paidAt, result); err != nil {
			return err
		}
		return s.carts.TxDeleteByUser(ctx, tx, userID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order paid")
	}

	orderCtx := s.log.WithOrderID(ctx, order.ID.String())
	s.log.Info(orderCtx, "order paid and cart cleared")

	return s.GetOrder(ctx, userID, false, order.ID)
}

// MarkDelivered stamps delivery. Calling it on an already-delivered
// order refreshes the timestamp rather than failing.
func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.orders.MarkDelivered(ctx, order.ID, time.Now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order delivered")
	}

	refreshed, err := s.loadOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	dto := FromModel(refreshed)
	return &dto, nil
}

func decimalFromPrice(price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Round(2)
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

// validateCreateOrder aggregates every payload problem into one
// validation error instead of reporting them one at a time.
func validateCreateOrder(req CreateOrderRequest) error {
	var problems error

	if len(req.Items) == 0 {
		problems = multierr.Append(problems, fmt.Errorf("items cannot be empty"))
	}
	for i, item := range req.Items {
		if item.Qty < 1 {
			problems = multierr.Append(problems, fmt.Errorf("items[%d]: qty must be at least 1", i))
		}
		if item.Price < 0 {
			problems = multierr.Append(problems, fmt.Errorf("items[%d]: price cannot be negative", i))
		}
		if strings.TrimSpace(item.Name) == "" {
			problems = multierr.Append(problems, fmt.Errorf("items[%d]: name is required", i))
		}
	}
	if strings.TrimSpace(req.ShippingAddress.FullName) == "" {
		problems = multierr.Append(problems, fmt.Errorf("shippingAddress.fullName is required"))
	}
	if strings.TrimSpace(req.ShippingAddress.Address) == "" {
		problems = multierr.Append(problems, fmt.Errorf("shippingAddress.address is required"))
	}

	if problems == nil {
		return nil
	}

	details := make([]string, 0)
	for _, problem := range multierr.Errors(problems) {
		details = append(details, problem.Error())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "order payload is invalid").
		WithDetails(map[string]any{"problems": details})
}
