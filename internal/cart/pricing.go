package cart

import (
	"github.com/shopspring/decimal"
)

// DiscountFunc supplies a discount for a cart given its rounded subtotal.
type DiscountFunc func(state State, subtotal decimal.Decimal) decimal.Decimal

// Pricing is the flat pricing policy applied by Recompute.
type Pricing struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	Discount              DiscountFunc
}

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Recompute derives every line total and money field of s from its items.
// Each field is computed at full precision and rounded once; Total is then
// the rounded sum of the rounded parts.
func Recompute(s State, p Pricing) State {
	out := s.Clone()
	subtotal := decimal.Zero
	count := 0
	for i := range out.Items {
		line := out.Items[i].Price.Mul(decimal.NewFromInt(int64(out.Items[i].Quantity)))
		out.Items[i].LineTotal = round2(line)
		subtotal = subtotal.Add(line)
		count += out.Items[i].Quantity
	}
	out.Subtotal = round2(subtotal)
	out.ItemCount = count
	out.Tax = round2(subtotal.Mul(p.TaxRate))

	switch {
	case len(out.Items) == 0:
		out.Shipping = decimal.Zero
	case out.Subtotal.GreaterThanOrEqual(p.FreeShippingThreshold):
		out.Shipping = decimal.Zero
	default:
		out.Shipping = round2(p.ShippingFee)
	}

	discount := decimal.Zero
	if p.Discount != nil {
		discount = p.Discount(out, out.Subtotal)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(out.Subtotal) {
		discount = out.Subtotal
	}
	out.Discount = round2(discount)

	out.Total = round2(out.Subtotal.Add(out.Tax).Add(out.Shipping).Sub(out.Discount))
	return out
}

// PercentOff returns a DiscountFunc taking pct percent off the subtotal.
func PercentOff(pct decimal.Decimal) DiscountFunc {
	return func(_ State, subtotal decimal.Decimal) decimal.Decimal {
		return subtotal.Mul(pct).Div(hundred)
	}
}
