package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCalculateLine(t *testing.T) {
	amounts := CalculateLine(d("2"), d("50"), d("10"), d("11"))
	require.True(t, amounts.Gross.Equal(d("100")))
	require.True(t, amounts.Discount.Equal(d("10")))
	require.True(t, amounts.Tax.Equal(d("9.9")))
	require.True(t, amounts.Total.Equal(d("99.9")))
}

func TestCalculateLineNoDiscountNoTax(t *testing.T) {
	amounts := CalculateLine(d("1"), d("100"), decimal.Zero, decimal.Zero)
	require.True(t, amounts.Gross.Equal(d("100")))
	require.True(t, amounts.Discount.IsZero())
	require.True(t, amounts.Tax.IsZero())
	require.True(t, amounts.Total.Equal(d("100")))
}

func TestCalculateLineRounding(t *testing.T) {
	// 3 x 0.333 = 0.999, rounded to two decimals at the line level.
	amounts := CalculateLine(d("3"), d("0.333"), decimal.Zero, decimal.Zero)
	require.True(t, amounts.Gross.Equal(d("1.00")), "got %s", amounts.Gross)
}

func TestAggregateInvariant(t *testing.T) {
	lines := []LineAmounts{
		CalculateLine(d("2"), d("50"), d("5"), d("10")),
		CalculateLine(d("1"), d("100"), decimal.Zero, d("10")),
		CalculateLine(d("4"), d("12.75"), d("2.5"), decimal.Zero),
	}
	totals := Aggregate(lines)
	expected := totals.Subtotal.Sub(totals.Discount).Add(totals.TaxTotal)
	require.True(t, totals.Total.Equal(expected), "total %s != %s", totals.Total, expected)
}
