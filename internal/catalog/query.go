package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/brightbasket/storefront-backend/pkg/enums"
	"github.com/brightbasket/storefront-backend/pkg/pagination"
)

// Sort keys accepted by the browse endpoint. Anything else falls back
// to SortNewest.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
)

// orderByForSort maps every sort key onto its SQL order clause. Each
// ordering carries an id tie-break so pages stay stable across requests.
var orderByForSort = map[string]string{
	SortPriceAsc:  "price ASC, id ASC",
	SortPriceDesc: "price DESC, id DESC",
	SortRating:    "rating DESC, id DESC",
	SortNewest:    "created_at DESC, id DESC",
	SortOldest:    "created_at ASC, id ASC",
	SortNameAsc:   "name ASC, id ASC",
	SortNameDesc:  "name DESC, id DESC",
}

// ListQuery is the normalized browse query. Every filter is optional;
// a nil/empty field contributes no predicate.
type ListQuery struct {
	Keyword     string
	Category    *enums.ProductCategory
	SubCategory string
	NewArrivals bool
	OnSale      bool
	MinPrice    *float64
	MaxPrice    *float64
	Brands      []string
	Colors      []string
	Sizes       []string
	MinRating   *float64
	InStock     bool
	Sort        string
	Pagination  pagination.Params
}

// OrderBy returns the SQL order clause for the requested sort.
func (q ListQuery) OrderBy() string {
	if clause, ok := orderByForSort[q.Sort]; ok {
		return clause
	}
	return orderByForSort[SortNewest]
}

// ParseListQuery is the single place raw browse query params become a
// ListQuery. Malformed numeric values silently coerce to their defaults:
// public search endpoints never reject on a bad filter value.
func ParseListQuery(values url.Values) ListQuery {
	query := ListQuery{
		Keyword:     strings.TrimSpace(values.Get("keyword")),
		SubCategory: strings.TrimSpace(values.Get("subCategory")),
		NewArrivals: parseBool(values.Get("newArrivals")),
		OnSale:      parseBool(values.Get("onSale")),
		MinPrice:    parseFloat(values.Get("minPrice")),
		MaxPrice:    parseFloat(values.Get("maxPrice")),
		Brands:      parseCSV(values.Get("brands")),
		Colors:      parseCSV(values.Get("colors")),
		Sizes:       parseCSV(values.Get("sizes")),
		MinRating:   parseFloat(values.Get("minRating")),
		InStock:     parseBool(values.Get("inStock")),
		Sort:        strings.TrimSpace(values.Get("sort")),
		Pagination: pagination.Params{
			Page:  pagination.ParsePage(values.Get("page")),
			Limit: pagination.ParseLimit(values.Get("limit")),
		},
	}

	if category, err := enums.ParseProductCategory(strings.TrimSpace(values.Get("category"))); err == nil {
		query.Category = &category
	}

	return query
}

func parseBool(raw string) bool {
	ok, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && ok
}

func parseFloat(raw string) *float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
