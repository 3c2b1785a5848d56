package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/brightbasket/storefront-backend/pkg/enums"
)

// Product represents a catalog listing.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string                `gorm:"column:name;not null"`
	Brand       string                `gorm:"column:brand;not null"`
	Category    enums.ProductCategory `gorm:"column:category;type:text;not null"`
	SubCategory string                `gorm:"column:sub_category;not null;default:''"`

	Price decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Color string          `gorm:"column:color;not null;default:''"`
	Sizes pq.StringArray  `gorm:"column:sizes;type:text[]"`

	Image  string         `gorm:"column:image;not null;default:''"`
	Images pq.StringArray `gorm:"column:images;type:text[]"`

	Rating          float64 `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	NumReviews      int     `gorm:"column:num_reviews;not null;default:0"`
	CountInStock    int     `gorm:"column:count_in_stock;not null;default:0"`
	DiscountPercent int     `gorm:"column:discount_percent;not null;default:0"`
	IsNewArrival    bool    `gorm:"column:is_new_arrival;not null;default:false"`
	IsOnSale        bool    `gorm:"column:is_on_sale;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
