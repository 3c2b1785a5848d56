package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightbasket/storefront-backend/internal/catalog"
	"github.com/brightbasket/storefront-backend/pkg/db/models"
	pkgerrors "github.com/brightbasket/storefront-backend/pkg/errors"
)

// ToggleRequest names the product to add or remove.
type ToggleRequest struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
}

// ToggleResult reports the wishlist membership after the toggle.
type ToggleResult struct {
	ProductID  uuid.UUID `json:"productId"`
	Wishlisted bool      `json:"wishlisted"`
}

// Service exposes wishlist reads and the toggle operation.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]catalog.ProductDTO, error)
	Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error)
}

type wishlistRepository interface {
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Has(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	wishlists wishlistRepository
	products  productFinder
}

// ServiceParams bundles the dependencies required to build a wishlist service.
type ServiceParams struct {
	WishlistRepo wishlistRepository
	ProductRepo  productFinder
}

// NewService constructs a wishlist service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, fmt.Errorf("wishlist repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{wishlists: params.WishlistRepo, products: params.ProductRepo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]catalog.ProductDTO, error) {
	products, err := s.wishlists.ListProducts(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist")
	}
	return catalog.FromModels(products), nil
}

// Toggle adds the product when absent and removes it when present, so a
// double toggle restores the original state.
func (s *service) Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error) {
	present, err := s.wishlists.Has(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check wishlist")
	}

	if present {
		if err := s.wishlists.Remove(ctx, userID, productID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist entry")
		}
		return &ToggleResult{ProductID: productID, Wishlisted: false}, nil
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.wishlists.Add(ctx, userID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add wishlist entry")
	}
	return &ToggleResult{ProductID: productID, Wishlisted: true}, nil
}
