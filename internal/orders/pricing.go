package orders

import (
	"github.com/shopspring/decimal"

	"github.com/brightbasket/storefront-backend/pkg/config"
)

// Totals is the order price breakdown, each figure rounded to two
// decimal places.
type Totals struct {
	ItemsPrice    decimal.Decimal
	TaxPrice      decimal.Decimal
	ShippingPrice decimal.Decimal
	TotalPrice    decimal.Decimal
}

// ComputeTotals derives the price breakdown from the client-supplied
// line items. Shipping is a flat fee waived once the item subtotal
// reaches the free-shipping threshold; tax is a flat percentage of the
// item subtotal.
func ComputeTotals(items []ItemInput, cfg config.PricingConfig) Totals {
	itemsPrice := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Qty)))
		itemsPrice = itemsPrice.Add(line)
	}
	itemsPrice = itemsPrice.Round(2)

	shipping := decimal.NewFromFloat(cfg.ShippingFlatFee)
	if itemsPrice.GreaterThanOrEqual(decimal.NewFromFloat(cfg.FreeShippingThreshold)) {
		shipping = decimal.Zero
	}
	shipping = shipping.Round(2)

	tax := itemsPrice.
		Mul(decimal.NewFromFloat(cfg.TaxPercent)).
		Div(decimal.NewFromInt(100)).
		Round(2)

	total := itemsPrice.Add(tax).Add(shipping).Round(2)

	return Totals{
		ItemsPrice:    itemsPrice,
		TaxPrice:      tax,
		ShippingPrice: shipping,
		TotalPrice:    total,
	}
}

// MinorUnits converts a rounded decimal amount to the currency's
// smallest unit (paise for INR).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
