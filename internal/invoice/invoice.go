// Package invoice derives the financial fields of a sales or purchase entry:
// line amounts, discounts, tax and the running grand total
package invoice

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoLines is returned when a document has nothing to total
	ErrNoLines = errors.New("document has no lines")

	// ErrInvalidQuantity is returned for zero or negative quantities
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrNegativePrice is returned for negative unit prices or payments
	ErrNegativePrice = errors.New("amount cannot be negative")

	// ErrPercentOutOfRange is returned for discount or tax outside 0..100
	ErrPercentOutOfRange = errors.New("percentage must be between 0 and 100")
)

// ValidationError adds the offending field to a sentinel error
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Places is the rounding precision for money amounts
const Places = 2

var hundred = decimal.NewFromInt(100)

// Line is the input for one row
type Line struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// LineTotal holds the derived amounts of one row
type LineTotal struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Net      decimal.Decimal
}

// Params are the document level inputs
type Params struct {
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	Paid            decimal.Decimal
}

// Totals are the document level results
type Totals struct {
	Lines            []LineTotal
	Subtotal         decimal.Decimal
	DocumentDiscount decimal.Decimal
	TaxableBase      decimal.Decimal
	Tax              decimal.Decimal
	GrandTotal       decimal.Decimal
	Paid             decimal.Decimal
	BalanceDue       decimal.Decimal
}

// Validate checks a single line
func (l Line) Validate() error {
	if l.Quantity.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Err: ErrInvalidQuantity, Details: l.Quantity.String()}
	}
	if l.UnitPrice.IsNegative() {
		return &ValidationError{Err: ErrNegativePrice, Details: "unit price " + l.UnitPrice.String()}
	}
	return checkPercent("line discount", l.DiscountPercent)
}

// Validate checks the document level inputs
func (p Params) Validate() error {
	if err := checkPercent("discount", p.DiscountPercent); err != nil {
		return err
	}
	if err := checkPercent("tax", p.TaxPercent); err != nil {
		return err
	}
	if p.Paid.IsNegative() {
		return &ValidationError{Err: ErrNegativePrice, Details: "paid " + p.Paid.String()}
	}
	return nil
}

// ComputeLine derives gross, discount and net for one row. Amounts are
// rounded half away from zero to Places
func ComputeLine(l Line) (LineTotal, error) {
	if err := l.Validate(); err != nil {
		return LineTotal{}, err
	}
	gross := l.Quantity.Mul(l.UnitPrice).Round(Places)
	discount := percentOf(gross, l.DiscountPercent)
	return LineTotal{
		Gross:    gross,
		Discount: discount,
		Net:      gross.Sub(discount),
	}, nil
}

// Compute rolls the lines up into document totals:
// subtotal = sum(net), taxable = subtotal - document discount,
// grand total = taxable + tax, balance = grand total - paid
func Compute(lines []Line, p Params) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, ErrNoLines
	}
	if err := p.Validate(); err != nil {
		return Totals{}, err
	}

	t := Totals{Lines: make([]LineTotal, 0, len(lines))}
	for i, l := range lines {
		lt, err := ComputeLine(l)
		if err != nil {
			return Totals{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		t.Lines = append(t.Lines, lt)
		t.Subtotal = t.Subtotal.Add(lt.Net)
	}

	t.DocumentDiscount = percentOf(t.Subtotal, p.DiscountPercent)
	t.TaxableBase = t.Subtotal.Sub(t.DocumentDiscount)
	t.Tax = percentOf(t.TaxableBase, p.TaxPercent)
	t.GrandTotal = t.TaxableBase.Add(t.Tax)
	t.Paid = p.Paid.Round(Places)
	t.BalanceDue = t.GrandTotal.Sub(t.Paid)
	return t, nil
}

// ParsePercent reads a percentage from user or config input. Empty means zero
func ParsePercent(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse percent %q: %w", s, err)
	}
	if err := checkPercent("percent", d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(percent).Div(hundred).Round(Places)
}

func checkPercent(name string, p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return &ValidationError{Err: ErrPercentOutOfRange, Details: name + " " + p.String()}
	}
	return nil
}
