package cart

import (
	"github.com/google/uuid"

	"github.com/brightbasket/storefront-backend/internal/catalog"
	"github.com/brightbasket/storefront-backend/pkg/db/models"
)

// SetItemsRequest is the replace-semantics cart write payload.
type SetItemsRequest struct {
	Items []ItemInput `json:"items"`
}

// ItemInput is one requested (product, qty) pair. Product is kept as a
// raw string so structural validation can report the offending position
// instead of failing at decode time.
type ItemInput struct {
	Product string  `json:"product"`
	Qty     float64 `json:"qty"`
}

// ItemDTO is one cart line with its product populated.
type ItemDTO struct {
	Product catalog.ProductDTO `json:"product"`
	Qty     int                `json:"qty"`
}

// CartDTO is the public cart shape. A user with no stored cart gets an
// empty-items placeholder rather than a 404.
type CartDTO struct {
	UserID uuid.UUID `json:"userId"`
	Items  []ItemDTO `json:"items"`
}

func fromModel(record *models.Cart) *CartDTO {
	dto := &CartDTO{
		UserID: record.UserID,
		Items:  make([]ItemDTO, 0, len(record.Items)),
	}
	for i := range record.Items {
		item := record.Items[i]
		if item.Product == nil {
			continue
		}
		dto.Items = append(dto.Items, ItemDTO{
			Product: catalog.FromModel(item.Product),
			Qty:     item.Qty,
		})
	}
	return dto
}

func emptyCart(userID uuid.UUID) *CartDTO {
	return &CartDTO{UserID: userID, Items: []ItemDTO{}}
}
