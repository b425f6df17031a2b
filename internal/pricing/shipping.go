// Package pricing holds the shipping rule shared by cart display, checkout
// and order verification.
package pricing

import "github.com/shopspring/decimal"

var (
	// FreeShippingThreshold is the subtotal a cart must exceed to ship free.
	// A subtotal of exactly the threshold still pays the fee.
	FreeShippingThreshold = decimal.NewFromInt(500)

	// ShippingFee is the flat fee below the threshold
	ShippingFee = decimal.NewFromInt(25)
)

// Quote is the amount breakdown shown to a customer
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// FreeShipping reports whether subtotal qualifies for free shipping
func FreeShipping(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThan(FreeShippingThreshold)
}

// Shipping returns the shipping fee owed for subtotal
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if FreeShipping(subtotal) {
		return decimal.Zero
	}
	return ShippingFee
}

// QuoteFor computes shipping and grand total for subtotal
func QuoteFor(subtotal decimal.Decimal) Quote {
	shipping := Shipping(subtotal)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}

// FormatAmount renders an amount with two decimals, the format order
// backends use for totalAmount
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
