package service

import (
	"github.com/swadeshika/storefront/internal/models"

	"github.com/shopspring/decimal"
)

// StoreSettings are the pricing knobs resolved from config plus the
// settings table at quote time.
type StoreSettings struct {
	FreeShippingThreshold models.Money
	FlatShippingRate      models.Money
	TaxPercent            decimal.Decimal
	// TaxOnDiscounted switches the tax base from the full subtotal to
	// the subtotal net of discount.
	TaxOnDiscounted      bool
	Currency             string
	PaymentExpireMinutes int
}

// PriceLine is one resolved line item entering the pricing engine.
// UnitPrice comes from the catalog, never from the client.
type PriceLine struct {
	ProductID  uint
	VariantID  uint
	CategoryID uint
	Title      string
	SKU        string
	UnitPrice  models.Money
	Quantity   int
}

// Quote is the settled money breakdown for a set of lines.
type Quote struct {
	Subtotal    models.Money `json:"subtotal"`
	ShippingFee models.Money `json:"shipping_fee"`
	TaxAmount   models.Money `json:"tax_amount"`
	Discount    models.Money `json:"discount_amount"`
	Total       models.Money `json:"total_amount"`
	Currency    string       `json:"currency"`
}

// PricingEngine computes order totals. It is pure: all inputs arrive
// resolved and no I/O happens here.
type PricingEngine struct{}

// NewPricingEngine creates a pricing engine.
func NewPricingEngine() *PricingEngine {
	return &PricingEngine{}
}

// Subtotal sums unit price times quantity across lines.
func (e *PricingEngine) Subtotal(lines []PriceLine) models.Money {
	subtotal := decimal.Zero
	for _, line := range lines {
		lineTotal := line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal).Round(2)
	}
	return models.NewMoneyFromDecimal(subtotal)
}

// ShippingFee is zero at or above the free-shipping threshold and the
// flat rate below it.
func (e *PricingEngine) ShippingFee(subtotal models.Money, settings StoreSettings) models.Money {
	if subtotal.Decimal.GreaterThanOrEqual(settings.FreeShippingThreshold.Decimal) {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
	return settings.FlatShippingRate
}

// TaxAmount applies the configured percentage. The base is the full
// subtotal unless TaxOnDiscounted is set, in which case it is the
// subtotal net of discount, floored at zero.
func (e *PricingEngine) TaxAmount(subtotal, discount models.Money, settings StoreSettings) models.Money {
	base := subtotal.Decimal
	if settings.TaxOnDiscounted {
		base = base.Sub(discount.Decimal)
		if base.LessThan(decimal.Zero) {
			base = decimal.Zero
		}
	}
	tax := base.Mul(settings.TaxPercent).Div(decimal.NewFromInt(100))
	return models.NewMoneyFromDecimal(tax)
}

// Price settles the full breakdown for the lines and discount. The
// total is clamped at zero.
func (e *PricingEngine) Price(lines []PriceLine, discount models.Money, settings StoreSettings) Quote {
	subtotal := e.Subtotal(lines)
	shipping := e.ShippingFee(subtotal, settings)
	tax := e.TaxAmount(subtotal, discount, settings)

	total := subtotal.Decimal.
		Add(shipping.Decimal).
		Add(tax.Decimal).
		Sub(discount.Decimal).
		Round(2)
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}

	return Quote{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		TaxAmount:   tax,
		Discount:    discount,
		Total:       models.NewMoneyFromDecimal(total),
		Currency:    settings.Currency,
	}
}
