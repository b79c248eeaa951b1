// Package pricing turns cart lines and a discount into the totals shown to
// the operator. Everything here is pure: no I/O, no state, no errors.
package pricing

import "github.com/shopspring/decimal"

// VATRate is the value added tax applied to the taxable amount.
var VATRate = decimal.RequireFromString("0.16")

// Line is the pricing view of a cart line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Preview holds the locally computed totals. The Order service's figures
// are authoritative; a Preview is only ever displayed.
type Preview struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Taxable  decimal.Decimal `json:"taxable"`
	VAT      decimal.Decimal `json:"vat"`
	Total    decimal.Decimal `json:"total"`
}

// Compute prices lines with the given discount. Negative prices and
// quantities count as zero and the discount is clamped to [0, subtotal],
// so any input produces a valid result.
func Compute(lines []Line, discount decimal.Decimal) Preview {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.UnitPrice, l.Quantity))
	}

	effective := EffectiveDiscount(discount, subtotal)
	taxable := subtotal.Sub(effective)
	vat := Round2(taxable.Mul(VATRate))
	total := Round2(taxable.Add(vat))

	return Preview{
		Subtotal: subtotal,
		Discount: effective,
		Taxable:  taxable,
		VAT:      vat,
		Total:    total,
	}
}

// LineTotal is unitPrice × quantity at full precision.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	if unitPrice.IsNegative() || quantity <= 0 {
		return decimal.Zero
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// EffectiveDiscount clamps discount to [0, subtotal].
func EffectiveDiscount(discount, subtotal decimal.Decimal) decimal.Decimal {
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
