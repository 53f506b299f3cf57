// Package billing computes the league fee figures shown on the admin roster.
package billing

import "github.com/shopspring/decimal"

// DefaultTaxRate is the sales tax applied on top of league fees.
var DefaultTaxRate = decimal.RequireFromString("0.13")

// Totals is what a member owes (tax included) and what they have paid.
type Totals struct {
	Owed decimal.Decimal
	Paid decimal.Decimal
}

// Calculator applies a fixed tax rate to amounts due.
type Calculator struct {
	taxRate decimal.Decimal
}

// NewCalculator creates a Calculator. A negative rate is treated as zero.
func NewCalculator(taxRate decimal.Decimal) *Calculator {
	if taxRate.IsNegative() {
		taxRate = decimal.Zero
	}
	return &Calculator{taxRate: taxRate}
}

// TaxRate returns the configured rate.
func (c *Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Owed returns the amount due with tax applied, rounded to cents.
func (c *Calculator) Owed(amountDue decimal.Decimal) decimal.Decimal {
	return amountDue.Mul(decimal.NewFromInt(1).Add(c.taxRate)).Round(2)
}

// Sum totals a set of payment rows.
func (c *Calculator) Sum(amountsDue, amountsPaid []decimal.Decimal) Totals {
	return Totals{
		Owed: c.Owed(decimal.Sum(decimal.Zero, amountsDue...)),
		Paid: decimal.Sum(decimal.Zero, amountsPaid...).Round(2),
	}
}
