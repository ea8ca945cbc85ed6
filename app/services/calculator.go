package services

import (
	"github.com/shopspring/decimal"
)

// moneyPlaces is the number of decimal places every output figure keeps.
const moneyPlaces = 2

// Breakdown is the rounded subtotal, tax, tip and total of one party.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"taxAmount"`
	Tip      decimal.Decimal `json:"tipAmount"`
	Total    decimal.Decimal `json:"totalAmount"`
}

// ParticipantShare is one participant's rounded settlement.
type ParticipantShare struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Breakdown
}

// OrderCalculation is the settlement of a whole order. The aggregate is
// rounded on its own, so the sum of participant figures may differ from it
// by a cent.
type OrderCalculation struct {
	TaxRate      decimal.Decimal
	TipRate      decimal.Decimal
	Aggregate    Breakdown
	Participants []ParticipantShare
}

// CalculateOrder splits tax and tip across participants in proportion to
// their subtotals. All arithmetic is exact; each figure is rounded half away
// from zero to cents only at the end and independently of the others.
func CalculateOrder(agg CartAggregate, taxRate, tipRate decimal.Decimal) (OrderCalculation, error) {
	if taxRate.IsNegative() || tipRate.IsNegative() {
		return OrderCalculation{}, &AppError{Kind: KindValidation, Message: "tax and tip rates must not be negative", Err: ErrNegativeRate}
	}

	subtotal := agg.Subtotal()
	tax := subtotal.Mul(taxRate)
	tip := subtotal.Mul(tipRate)

	calc := OrderCalculation{
		TaxRate:   taxRate,
		TipRate:   tipRate,
		Aggregate: rounded(subtotal, tax, tip),
	}

	calc.Participants = make([]ParticipantShare, 0, len(agg.Participants))
	for _, p := range agg.Participants {
		pTax, pTip := decimal.Zero, decimal.Zero
		if !subtotal.IsZero() {
			// Multiply before dividing so a single participant gets the
			// grand figures back exactly.
			pTax = tax.Mul(p.Subtotal).Div(subtotal)
			pTip = tip.Mul(p.Subtotal).Div(subtotal)
		}
		calc.Participants = append(calc.Participants, ParticipantShare{
			Email:     p.Email,
			Name:      p.Name,
			Breakdown: rounded(p.Subtotal, pTax, pTip),
		})
	}
	return calc, nil
}

func rounded(subtotal, tax, tip decimal.Decimal) Breakdown {
	return Breakdown{
		Subtotal: subtotal.Round(moneyPlaces),
		Tax:      tax.Round(moneyPlaces),
		Tip:      tip.Round(moneyPlaces),
		Total:    subtotal.Add(tax).Add(tip).Round(moneyPlaces),
	}
}
