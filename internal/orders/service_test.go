package orders

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brightbasket/storefront-backend/internal/cart"
	"github.com/brightbasket/storefront-backend/pkg/db/models"
	pkgerrors "github.com/brightbasket/storefront-backend/pkg/errors"
	"github.com/brightbasket/storefront-backend/pkg/logger"
	"github.com/brightbasket/storefront-backend/pkg/razorpay"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  shipping_address TEXT,
  payment_method TEXT NOT NULL DEFAULT 'razorpay',
  items_price NUMERIC NOT NULL,
  tax_price NUMERIC NOT NULL,
  shipping_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  is_paid INTEGER NOT NULL DEFAULT 0,
  paid_at DATETIME,
  payment_result TEXT,
  is_delivered INTEGER NOT NULL DEFAULT 0,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  image TEXT NOT NULL DEFAULT ''
);`
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT NOT NULL,
  category TEXT NOT NULL,
  sub_category TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  color TEXT NOT NULL DEFAULT '',
  sizes TEXT,
  image TEXT NOT NULL DEFAULT '',
  images TEXT,
  rating NUMERIC NOT NULL DEFAULT 0,
  num_reviews INTEGER NOT NULL DEFAULT 0,
  count_in_stock INTEGER NOT NULL DEFAULT 0,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  is_new_arrival INTEGER NOT NULL DEFAULT 0,
  is_on_sale INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

// fakeGateway satisfies the payment gateway surface without the SDK.
type fakeGateway struct {
	credentialsErr error
	createErr      error
	orderID        string
	validSignature string
}

func (f *fakeGateway) KeyID() string { return "rzp_test_key" }

func (f *fakeGateway) CheckCredentials() error { return f.credentialsErr }

func (f *fakeGateway) CreateOrder(ctx context.Context, params razorpay.OrderParams) (*razorpay.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &razorpay.Order{
		ID:               f.orderID,
		AmountMinorUnits: params.AmountMinorUnits,
		Currency:         params.Currency,
	}, nil
}

func (f *fakeGateway) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	return signature == f.validSignature
}

type gormTransactor struct {
	db *gorm.DB
}

func (g gormTransactor) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func newOrderService(t *testing.T, db *gorm.DB, gateway *fakeGateway) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		OrderRepo:     NewRepository(db),
		CartDeleter:   cart.NewRepository(db),
		Gateway:       gateway,
		Transactor:    gormTransactor{db: db},
		PricingConfig: defaultPricing(),
		Logger:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func validCreateRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Items: []ItemInput{
			{Product: uuid.NewString(), Name: "Trail Shoe", Qty: 2, Price: 100},
		},
		ShippingAddress: ShippingAddressInput{
			FullName: "Asha Rao",
			Address:  "12 Lake View Road",
			City:     "Pune",
		},
	}
}

func TestServiceCreateOrderPersistsUnpaid(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db, &fakeGateway{})
	userID := uuid.New()

	dto, err := svc.CreateOrder(context.Background(), userID, validCreateRequest())
	require.NoError(t, err)

	assert.False(t, dto.IsPaid)
	assert.Nil(t, dto.PaidAt)
	assert.Equal(t, "220", dto.TotalPrice.String())
	assert.Equal(t, "0", dto.ShippingPrice.String())
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 2, dto.Items[0].Qty)

	stored, err := NewRepository(db).FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)
	assert.Equal(t, userID, stored.UserID)
}

func TestServiceCreateOrderAggregatesValidationProblems(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db, &fakeGateway{})

	_, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderRequest{
		Items: []ItemInput{
			{Product: uuid.NewString(), Name: "", Qty: 0, Price: -1},
		},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	problems, ok := details["problems"].([]string)
	require.True(t, ok)
	// qty, price, name, and the missing shipping fields all reported at once.
	assert.Len(t, problems, 5)
}

func TestServiceCreatePaymentOrderFailuresKeepOrderID(t *testing.T) {
	db := setupOrdersTestDB(t)
	userID := uuid.New()

	cases := []struct {
		name    string
		gateway *fakeGateway
		reason  string
	}{
		{
			name:    "missing credentials",
			gateway: &fakeGateway{credentialsErr: razorpay.ErrMissingCredentials},
			reason:  GatewayFailureMissingCredentials,
		},
		{
			name:    "placeholder credentials",
			gateway: &fakeGateway{credentialsErr: razorpay.ErrPlaceholderCredentials},
			reason:  GatewayFailurePlaceholderCredentials,
		},
		{
			name:    "gateway error",
			gateway: &fakeGateway{createErr: errors.New("upstream 500")},
			reason:  GatewayFailureError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newOrderService(t, db, tc.gateway)
			dto, err := svc.CreateOrder(context.Background(), userID, validCreateRequest())
			require.NoError(t, err)

			resp, err := svc.CreatePaymentOrder(context.Background(), userID, dto.ID)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeDependency, typed.Code())

			details, ok := typed.Details().(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tc.reason, details["reason"])

			// The order id survives every failure variant.
			require.NotNil(t, resp)
			assert.Equal(t, dto.ID, resp.OrderID)
		})
	}
}

func TestServiceCreatePaymentOrderSuccess(t *testing.T) {
	db := setupOrdersTestDB(t)
	gateway := &fakeGateway{orderID: "order_gw_123"}
	svc := newOrderService(t, db, gateway)
	userID := uuid.New()

	dto, err := svc.CreateOrder(context.Background(), userID, validCreateRequest())
	require.NoError(t, err)

	resp, err := svc.CreatePaymentOrder(context.Background(), userID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "order_gw_123", resp.GatewayOrderID)
	assert.Equal(t, int64(22000), resp.AmountMinorUnits)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "rzp_test_key", resp.KeyID)
}

func TestServiceVerifyPaymentMarksPaidAndClearsCart(t *testing.T) {
	db := setupOrdersTestDB(t)
	gateway := &fakeGateway{validSignature: "good-signature"}
	svc := newOrderService(t, db, gateway)
	userID := uuid.New()

	// Seed a cart that must disappear once payment lands.
	cartRepo := cart.NewRepository(db)
	_, err := cartRepo.Replace(context.Background(), userID, []models.CartItem{
		{ProductID: uuid.New(), Qty: 1},
	})
	require.NoError(t, err)

	dto, err := svc.CreateOrder(context.Background(), userID, validCreateRequest())
	require.NoError(t, err)

	paid, err := svc.VerifyPayment(context.Background(), userID, VerifyPaymentRequest{
		OrderID:           dto.ID.String(),
		RazorpayOrderID:   "order_gw_123",
		RazorpayPaymentID: "pay_456",
		RazorpaySignature: "good-signature",
	})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.PaymentResult)
	assert.Equal(t, "pay_456", paid.PaymentResult.PaymentID)

	_, err = cartRepo.FindByUser(context.Background(), userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestServiceVerifyPaymentRejectsBadSignature(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db, &fakeGateway{validSignature: "good-signature"})
	userID := uuid.New()

	dto, err := svc.CreateOrder(context.Background(), userID, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), userID, VerifyPaymentRequest{
		OrderID:           dto.ID.String(),
		RazorpayOrderID:   "order_gw_123",
		RazorpayPaymentID: "pay_456",
		RazorpaySignature: "forged",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	stored, err := NewRepository(db).FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)
}

func TestServiceMarkDeliveredRestamps(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db, &fakeGateway{})
	userID := uuid.New()

	dto, err := svc.CreateOrder(context.Background(), userID, validCreateRequest())
	require.NoError(t, err)

	first, err := svc.MarkDelivered(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.True(t, first.IsDelivered)
	require.NotNil(t, first.DeliveredAt)

	// Delivering twice refreshes the stamp instead of erroring.
	second, err := svc.MarkDelivered(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.True(t, second.IsDelivered)
	require.NotNil(t, second.DeliveredAt)
	assert.False(t, second.DeliveredAt.Before(*first.DeliveredAt))
}

func TestServiceGetOrderHidesOtherUsersOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db, &fakeGateway{})
	owner := uuid.New()

	dto, err := svc.CreateOrder(context.Background(), owner, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), uuid.New(), false, dto.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	// Admins can read any order.
	got, err := svc.GetOrder(context.Background(), uuid.New(), true, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, got.ID)
}
