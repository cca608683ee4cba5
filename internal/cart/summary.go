package cart

import "github.com/shopspring/decimal"

// Summary is the checkout-facing digest of a cart.
type Summary struct {
	ItemCount                int             `json:"itemCount"`
	LineCount                int             `json:"lineCount"`
	Subtotal                 decimal.Decimal `json:"subtotal"`
	Tax                      decimal.Decimal `json:"tax"`
	Shipping                 decimal.Decimal `json:"shipping"`
	Discount                 decimal.Decimal `json:"discount"`
	Total                    decimal.Decimal `json:"total"`
	AmountToFreeShipping     decimal.Decimal `json:"amountToFreeShipping"`
	QualifiesForFreeShipping bool            `json:"qualifiesForFreeShipping"`
	HasCustomDesigns         bool            `json:"hasCustomDesigns"`
}

// Summarize builds a Summary from an already recomputed state.
func Summarize(s State, p Pricing) Summary {
	sum := Summary{
		ItemCount: s.ItemCount,
		LineCount: len(s.Items),
		Subtotal:  s.Subtotal,
		Tax:       s.Tax,
		Shipping:  s.Shipping,
		Discount:  s.Discount,
		Total:     s.Total,
	}
	sum.QualifiesForFreeShipping = s.Subtotal.GreaterThanOrEqual(p.FreeShippingThreshold)
	if !sum.QualifiesForFreeShipping {
		sum.AmountToFreeShipping = p.FreeShippingThreshold.Sub(s.Subtotal).Round(2)
	}
	for _, item := range s.Items {
		if item.IsCustomDesign {
			sum.HasCustomDesigns = true
			break
		}
	}
	return sum
}
