package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brightbasket/storefront-backend/pkg/db/models"
)

// ProductDTO is the public catalog representation of a product.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	SubCategory     string          `json:"subCategory,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Color           string          `json:"color,omitempty"`
	Sizes           []string        `json:"sizes"`
	Image           string          `json:"image"`
	Images          []string        `json:"images"`
	Rating          float64         `json:"rating"`
	NumReviews      int             `json:"numReviews"`
	CountInStock    int             `json:"countInStock"`
	DiscountPercent int             `json:"discountPercent"`
	IsNewArrival    bool            `json:"isNewArrival"`
	IsOnSale        bool            `json:"isOnSale"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ProductPage is the paged browse response envelope.
type ProductPage struct {
	Products []ProductDTO `json:"products"`
	Page     int          `json:"page"`
	Pages    int          `json:"pages"`
	Total    int64        `json:"total"`
}

// FromModel maps a stored product onto its public shape.
func FromModel(product *models.Product) ProductDTO {
	return ProductDTO{
		ID:              product.ID,
		Name:            product.Name,
		Brand:           product.Brand,
		Category:        product.Category.String(),
		SubCategory:     product.SubCategory,
		Price:           product.Price,
		Color:           product.Color,
		Sizes:           product.Sizes,
		Image:           product.Image,
		Images:          product.Images,
		Rating:          product.Rating,
		NumReviews:      product.NumReviews,
		CountInStock:    product.CountInStock,
		DiscountPercent: product.DiscountPercent,
		IsNewArrival:    product.IsNewArrival,
		IsOnSale:        product.IsOnSale,
		CreatedAt:       product.CreatedAt,
	}
}

// FromModels maps a slice of stored products.
func FromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// UpsertProductRequest is the admin create/update payload.
type UpsertProductRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=200"`
	Brand           string   `json:"brand" validate:"required,min=1,max=120"`
	Category        string   `json:"category" validate:"required"`
	SubCategory     string   `json:"subCategory" validate:"max=120"`
	Price           float64  `json:"price"`
	Color           string   `json:"color" validate:"max=60"`
	Sizes           []string `json:"sizes" validate:"max=20,dive,max=20"`
	Image           string   `json:"image" validate:"max=2048"`
	Images          []string `json:"images" validate:"max=20,dive,max=2048"`
	CountInStock    int      `json:"countInStock"`
	DiscountPercent int      `json:"discountPercent"`
	IsNewArrival    bool     `json:"isNewArrival"`
	IsOnSale        bool     `json:"isOnSale"`
}
