package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/brightbasket/storefront-backend/pkg/db/models"
	"github.com/brightbasket/storefront-backend/pkg/enums"
	pkgerrors "github.com/brightbasket/storefront-backend/pkg/errors"
)

// Service exposes catalog browsing plus admin product management.
type Service interface {
	List(ctx context.Context, query ListQuery) (*ProductPage, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, req UpsertProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepository interface {
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	products productRepository
}

// ServiceParams bundles the dependencies required to build a catalog service.
type ServiceParams struct {
	ProductRepo productRepository
}

// NewService constructs a catalog service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{products: params.ProductRepo}, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ProductPage, error) {
	result, err := s.products.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return &ProductPage{
		Products: FromModels(result.Products),
		Page:     result.Page,
		Pages:    result.Pages,
		Total:    result.Total,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, req UpsertProductRequest) (*ProductDTO, error) {
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	created, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	dto := FromModel(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpsertProductRequest) (*ProductDTO, error) {
	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	replacement, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	replacement.ID = existing.ID
	replacement.Rating = existing.Rating
	replacement.NumReviews = existing.NumReviews
	replacement.CreatedAt = existing.CreatedAt

	updated, err := s.products.Update(ctx, replacement)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	dto := FromModel(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func productFromRequest(req UpsertProductRequest) (*models.Product, error) {
	category, err := enums.ParseProductCategory(req.Category)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product category").
			WithDetails(map[string]string{"category": req.Category})
	}
	if req.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if req.CountInStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock count cannot be negative")
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}

	return &models.Product{
		Name:            req.Name,
		Brand:           req.Brand,
		Category:        category,
		SubCategory:     req.SubCategory,
		Price:           decimal.NewFromFloat(req.Price).Round(2),
		Color:           req.Color,
		Sizes:           req.Sizes,
		Image:           req.Image,
		Images:          req.Images,
		CountInStock:    req.CountInStock,
		DiscountPercent: req.DiscountPercent,
		IsNewArrival:    req.IsNewArrival,
		IsOnSale:        req.IsOnSale,
	}, nil
}
