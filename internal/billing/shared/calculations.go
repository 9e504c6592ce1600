package shared

import "github.com/shopspring/decimal"

// LineAmounts holds the computed amounts of a single invoice line.
type LineAmounts struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// InvoiceAmounts aggregates line amounts into invoice totals.
type InvoiceAmounts struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	TaxTotal decimal.Decimal
	Total    decimal.Decimal
}

// CalculateLine computes gross, discount, tax and total for one line.
// discountPct and taxPct are percentages (0-100). All amounts are rounded
// to 2 decimal places after each step so line totals match what is billed.
func CalculateLine(quantity, unitPrice, discountPct, taxPct decimal.Decimal) LineAmounts {
	gross := quantity.Mul(unitPrice).Round(2)
	discount := gross.Mul(discountPct).Div(decimal.NewFromInt(100)).Round(2)
	net := gross.Sub(discount)
	tax := net.Mul(taxPct).Div(decimal.NewFromInt(100)).Round(2)
	return LineAmounts{
		Gross:    gross,
		Discount: discount,
		Tax:      tax,
		Total:    net.Add(tax),
	}
}

// Aggregate sums line amounts into invoice totals.
// The invariant total == subtotal - discount + tax_total holds by construction.
func Aggregate(lines []LineAmounts) InvoiceAmounts {
	var out InvoiceAmounts
	for _, l := range lines {
		out.Subtotal = out.Subtotal.Add(l.Gross)
		out.Discount = out.Discount.Add(l.Discount)
		out.TaxTotal = out.TaxTotal.Add(l.Tax)
		out.Total = out.Total.Add(l.Total)
	}
	return out
}
