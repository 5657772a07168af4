// Package pricing turns priced lines, a tax rate and a tip into invoice totals
// using fixed-point decimals.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
)

const centPlaces = 2

var hundred = decimal.NewFromInt(100)

type Line struct {
	UnitPrice decimal.Decimal
	Qty       int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxBase   decimal.Decimal `json:"tax_base"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Tip       decimal.Decimal `json:"tip"`
	Total     decimal.Decimal `json:"total"`
}

// Compute applies tax to the whole subtotal. Tax is rounded half-up to the cent.
func Compute(lines []Line, ratePercent decimal.Decimal, tip decimal.Decimal) (Totals, error) {
	if ratePercent.IsNegative() {
		return Totals{}, fmt.Errorf("%w: tax rate must not be negative", store.ErrInvalidTransaction)
	}
	if tip.IsNegative() {
		return Totals{}, fmt.Errorf("%w: tip must not be negative", store.ErrInvalidTransaction)
	}

	subtotal := decimal.Zero
	for i, line := range lines {
		if line.Qty < 1 || line.UnitPrice.IsNegative() {
			return Totals{}, fmt.Errorf("%w: line %d has qty %d and price %s", store.ErrInvalidTransaction, i+1, line.Qty, line.UnitPrice)
		}
		subtotal = subtotal.Add(line.Subtotal())
	}
	subtotal = Round(subtotal)
	tip = Round(tip)

	taxBase := subtotal
	taxAmount := decimal.Zero
	if !ratePercent.IsZero() {
		taxAmount = Round(taxBase.Mul(ratePercent).Div(hundred))
	}

	return Totals{
		Subtotal:  subtotal,
		TaxBase:   taxBase,
		TaxAmount: taxAmount,
		Tip:       tip,
		Total:     taxBase.Add(taxAmount).Add(tip),
	}, nil
}

// Round rounds to cents, halves going up. Amounts here are never negative.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(centPlaces)
}

// Change returns received minus total, or an error when received falls short.
func Change(total, received decimal.Decimal) (decimal.Decimal, error) {
	if received.LessThan(total) {
		return decimal.Zero, &store.PaymentError{Total: total, Received: received}
	}
	return received.Sub(total), nil
}
