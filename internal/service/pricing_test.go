package service

import (
	"testing"

	"github.com/swadeshika/storefront/internal/models"

	"github.com/shopspring/decimal"
)

func money(t *testing.T, s string) models.Money {
	t.Helper()
	m, err := models.NewMoneyFromString(s)
	if err != nil {
		t.Fatalf("parse money %q failed: %v", s, err)
	}
	return m
}

func assertMoney(t *testing.T, label string, got models.Money, want string) {
	t.Helper()
	if !got.Decimal.Equal(money(t, want).Decimal) {
		t.Fatalf("%s want %s got %s", label, want, got.String())
	}
}

func testStoreSettings(t *testing.T) StoreSettings {
	t.Helper()
	return StoreSettings{
		FreeShippingThreshold: money(t, "999.00"),
		FlatShippingRate:      money(t, "49.00"),
		TaxPercent:            decimal.NewFromInt(18),
		TaxOnDiscounted:       false,
		Currency:              "INR",
		PaymentExpireMinutes:  15,
	}
}

func TestSubtotalSumsLines(t *testing.T) {
	engine := NewPricingEngine()
	lines := []PriceLine{
		{UnitPrice: money(t, "249.00"), Quantity: 2},
		{UnitPrice: money(t, "99.50"), Quantity: 1},
	}
	assertMoney(t, "subtotal", engine.Subtotal(lines), "597.50")
}

func TestShippingFeeFreeAtThreshold(t *testing.T) {
	engine := NewPricingEngine()
	settings := testStoreSettings(t)

	assertMoney(t, "shipping at threshold", engine.ShippingFee(money(t, "999.00"), settings), "0")
	assertMoney(t, "shipping below threshold", engine.ShippingFee(money(t, "998.99"), settings), "49.00")
}

func TestTaxAmountFullSubtotalBase(t *testing.T) {
	engine := NewPricingEngine()
	settings := testStoreSettings(t)

	tax := engine.TaxAmount(money(t, "1000.00"), money(t, "200.00"), settings)
	assertMoney(t, "tax on full subtotal", tax, "180.00")
}

func TestTaxAmountDiscountedBase(t *testing.T) {
	engine := NewPricingEngine()
	settings := testStoreSettings(t)
	settings.TaxOnDiscounted = true

	tax := engine.TaxAmount(money(t, "1000.00"), money(t, "200.00"), settings)
	assertMoney(t, "tax on discounted base", tax, "144.00")

	// Discount exceeding the subtotal floors the base at zero.
	tax = engine.TaxAmount(money(t, "100.00"), money(t, "150.00"), settings)
	assertMoney(t, "tax on over-discounted base", tax, "0")
}

func TestPriceBreakdown(t *testing.T) {
	engine := NewPricingEngine()
	settings := testStoreSettings(t)

	lines := []PriceLine{
		{UnitPrice: money(t, "500.00"), Quantity: 1},
	}
	quote := engine.Price(lines, money(t, "100.00"), settings)

	assertMoney(t, "subtotal", quote.Subtotal, "500.00")
	assertMoney(t, "shipping", quote.ShippingFee, "49.00")
	assertMoney(t, "tax", quote.TaxAmount, "90.00")
	// 500 + 49 + 90 - 100
	assertMoney(t, "total", quote.Total, "539.00")
	if quote.Currency != "INR" {
		t.Fatalf("currency want INR got %s", quote.Currency)
	}
}

func TestPriceTotalClampedAtZero(t *testing.T) {
	engine := NewPricingEngine()
	settings := testStoreSettings(t)
	settings.TaxPercent = decimal.Zero
	settings.FlatShippingRate = money(t, "0")

	lines := []PriceLine{
		{UnitPrice: money(t, "50.00"), Quantity: 1},
	}
	quote := engine.Price(lines, money(t, "500.00"), settings)
	assertMoney(t, "over-discounted total", quote.Total, "0")
}
