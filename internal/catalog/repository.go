package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/brightbasket/storefront-backend/pkg/db/models"
	"github.com/brightbasket/storefront-backend/pkg/pagination"
)

// Repository wires together product persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListResult carries one page of products plus the paging envelope.
type ListResult struct {
	Products []models.Product
	Total    int64
	Page     int
	Pages    int
}

// List applies the normalized browse query: every present filter adds an
// AND predicate, csv filters are OR within the list, sizes match on
// array overlap.
func (r *Repository) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	qb := r.db.WithContext(ctx).Model(&models.Product{})

	if query.Keyword != "" {
		qb = qb.Where("LOWER(name) LIKE ?", "%"+likeEscape(query.Keyword)+"%")
	}
	if query.Category != nil {
		qb = qb.Where("category = ?", *query.Category)
	}
	if query.SubCategory != "" {
		qb = qb.Where("sub_category = ?", query.SubCategory)
	}
	if query.NewArrivals {
		qb = qb.Where("is_new_arrival = ?", true)
	}
	if query.OnSale {
		qb = qb.Where("is_on_sale = ?", true)
	}
	if query.MinPrice != nil {
		qb = qb.Where("price >= ?", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		qb = qb.Where("price <= ?", *query.MaxPrice)
	}
	if len(query.Brands) > 0 {
		qb = qb.Where("brand IN ?", query.Brands)
	}
	if len(query.Colors) > 0 {
		qb = qb.Where("color IN ?", query.Colors)
	}
	if len(query.Sizes) > 0 {
		qb = qb.Where("sizes && ?", pq.StringArray(query.Sizes))
	}
	if query.MinRating != nil {
		qb = qb.Where("rating >= ?", *query.MinRating)
	}
	if query.InStock {
		qb = qb.Where("count_in_stock > ?", 0)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, err
	}

	params := query.Pagination.Normalize()
	var rows []models.Product
	err := qb.
		Order(query.OrderBy()).
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Products: rows,
		Total:    total,
		Page:     params.Page,
		Pages:    pagination.Pages(total, params.Limit),
	}, nil
}

// FindByID loads a single product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the subset of the provided ids that exist, in one query.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Find(&rows, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new product.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update persists every column of the provided product.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes the product row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeEscape lowercases the keyword and escapes LIKE metacharacters so
// user input only ever matches literally.
func likeEscape(keyword string) string {
	return strings.ToLower(likeReplacer.Replace(keyword))
}
