package cart

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightbasket/storefront-backend/pkg/db/models"
	pkgerrors "github.com/brightbasket/storefront-backend/pkg/errors"
)

// Service exposes the cart read and reconcile operations.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	SetItems(ctx context.Context, userID uuid.UUID, req SetItemsRequest) (*CartDTO, error)
}

type cartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Replace(ctx context.Context, userID uuid.UUID, items []models.CartItem) (*models.Cart, error)
}

type productFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type service struct {
	carts    cartRepository
	products productFinder
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	CartRepo    cartRepository
	ProductRepo productFinder
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{carts: params.CartRepo, products: params.ProductRepo}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	record, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyCart(userID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return fromModel(record), nil
}

// SetItems replaces the stored cart with the normalized request list.
// Structurally invalid entries reject the whole request and leave the
// stored cart untouched; valid entries pointing at missing products are
// silently dropped. Concurrent writes are last-write-wins.
func (s *service) SetItems(ctx context.Context, userID uuid.UUID, req SetItemsRequest) (*CartDTO, error) {
	normalized, invalidPositions := normalizeItems(req.Items)
	if len(invalidPositions) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart items are invalid").
			WithDetails(map[string]any{"invalidPositions": invalidPositions})
	}

	kept, err := s.dropMissingProducts(ctx, normalized)
	if err != nil {
		return nil, err
	}

	record, err := s.carts.Replace(ctx, userID, kept)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace cart")
	}
	return fromModel(record), nil
}

type normalizedItem struct {
	productID uuid.UUID
	qty       int
	position  int
}

// normalizeItems splits the raw list into structurally valid entries
// and the zero-based positions of invalid ones. Qtys are floored to
// ints and clamped to at least 1. Duplicate products keep the last
// occurrence's qty at the first occurrence's position.
func normalizeItems(items []ItemInput) ([]normalizedItem, []int) {
	valid := make([]normalizedItem, 0, len(items))
	indexByProduct := make(map[uuid.UUID]int, len(items))
	var invalid []int

	for i, item := range items {
		productID, err := uuid.Parse(item.Product)
		if err != nil || productID == uuid.Nil {
			invalid = append(invalid, i)
			continue
		}
		if math.IsNaN(item.Qty) || math.IsInf(item.Qty, 0) || item.Qty < 1 {
			invalid = append(invalid, i)
			continue
		}
		qty := int(math.Floor(item.Qty))
		if qty < 1 {
			qty = 1
		}

		if at, seen := indexByProduct[productID]; seen {
			valid[at].qty = qty
			continue
		}
		indexByProduct[productID] = len(valid)
		valid = append(valid, normalizedItem{productID: productID, qty: qty, position: len(valid)})
	}

	return valid, invalid
}

// dropMissingProducts filters the normalized list down to products that
// exist, using a single batch query.
func (s *service) dropMissingProducts(ctx context.Context, items []normalizedItem) ([]models.CartItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.productID)
	}
	existing, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check cart products")
	}
	known := make(map[uuid.UUID]struct{}, len(existing))
	for _, product := range existing {
		known[product.ID] = struct{}{}
	}

	kept := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if _, ok := known[item.productID]; !ok {
			continue
		}
		kept = append(kept, models.CartItem{
			ProductID: item.productID,
			Qty:       item.qty,
			Position:  len(kept),
		})
	}
	return kept, nil
}
