package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brightbasket/storefront-backend/internal/catalog"
	"github.com/brightbasket/storefront-backend/pkg/db/models"
	"github.com/brightbasket/storefront-backend/pkg/enums"
	pkgerrors "github.com/brightbasket/storefront-backend/pkg/errors"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

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
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func newTestProduct(t *testing.T, db *gorm.DB, name string, price float64) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:           uuid.New(),
		Name:         name,
		Brand:        "acme",
		Category:     enums.ProductCategoryMen,
		Price:        decimal.NewFromFloat(price),
		CountInStock: 10,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func newCartService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		CartRepo:    NewRepository(db),
		ProductRepo: catalog.NewRepository(db),
	})
	require.NoError(t, err)
	return svc
}

func TestServiceGetCartAbsentReturnsEmptyPlaceholder(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	userID := uuid.New()

	dto, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, dto.UserID)
	assert.Empty(t, dto.Items)
}

func TestServiceSetItemsReplacesCart(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	userID := uuid.New()

	first := newTestProduct(t, db, "First Tee", 20)
	second := newTestProduct(t, db, "Second Tee", 30)

	dto, err := svc.SetItems(context.Background(), userID, SetItemsRequest{
		Items: []ItemInput{
			{Product: first.ID.String(), Qty: 2},
			{Product: second.ID.String(), Qty: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, dto.Items, 2)
	assert.Equal(t, first.ID, dto.Items[0].Product.ID)
	assert.Equal(t, 2, dto.Items[0].Qty)
	assert.Equal(t, second.ID, dto.Items[1].Product.ID)

	// Replace semantics: the next write discards the previous list.
	dto, err = svc.SetItems(context.Background(), userID, SetItemsRequest{
		Items: []ItemInput{{Product: second.ID.String(), Qty: 5}},
	})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, second.ID, dto.Items[0].Product.ID)
	assert.Equal(t, 5, dto.Items[0].Qty)
}

func TestServiceSetItemsFloorsAndClampsQty(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	product := newTestProduct(t, db, "Fraction Tee", 15)

	dto, err := svc.SetItems(context.Background(), uuid.New(), SetItemsRequest{
		Items: []ItemInput{{Product: product.ID.String(), Qty: 3.9}},
	})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 3, dto.Items[0].Qty)
}

func TestServiceSetItemsRejectsInvalidEntriesWithoutMutation(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	userID := uuid.New()
	product := newTestProduct(t, db, "Kept Tee", 25)

	_, err := svc.SetItems(context.Background(), userID, SetItemsRequest{
		Items: []ItemInput{{Product: product.ID.String(), Qty: 1}},
	})
	require.NoError(t, err)

	_, err = svc.SetItems(context.Background(), userID, SetItemsRequest{
		Items: []ItemInput{
			{Product: product.ID.String(), Qty: 4},
			{Product: "not-a-uuid", Qty: 1},
			{Product: product.ID.String(), Qty: 0.2},
		},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, details["invalidPositions"])

	// The stored cart keeps its pre-rejection contents.
	dto, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 1, dto.Items[0].Qty)
}

func TestServiceSetItemsSilentlyDropsMissingProducts(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	product := newTestProduct(t, db, "Real Tee", 18)

	dto, err := svc.SetItems(context.Background(), uuid.New(), SetItemsRequest{
		Items: []ItemInput{
			{Product: uuid.NewString(), Qty: 2},
			{Product: product.ID.String(), Qty: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, product.ID, dto.Items[0].Product.ID)
}

func TestServiceSetItemsLastWriteWins(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	userID := uuid.New()

	var tees []*models.Product
	for i := 0; i < 2; i++ {
		tees = append(tees, newTestProduct(t, db, fmt.Sprintf("Race Tee %d", i), 12))
	}

	// Two sequential writes standing in for racing clients: there is no
	// version token, so the later request simply overwrites the earlier.
	_, err := svc.SetItems(context.Background(), userID, SetItemsRequest{
		Items: []ItemInput{{Product: tees[0].ID.String(), Qty: 1}},
	})
	require.NoError(t, err)
	dto, err := svc.SetItems(context.Background(), userID, SetItemsRequest{
		Items: []ItemInput{{Product: tees[1].ID.String(), Qty: 7}},
	})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, tees[1].ID, dto.Items[0].Product.ID)
}
