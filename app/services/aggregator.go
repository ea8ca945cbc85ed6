package services

import (
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/groupcart/app/models"
)

// Participant is one person's share of a cart before tax and tip.
type Participant struct {
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartAggregate lists participants in the order their first item appears.
type CartAggregate struct {
	Participants []Participant
}

// Subtotal is the exact sum of every participant subtotal.
func (a CartAggregate) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range a.Participants {
		sum = sum.Add(p.Subtotal)
	}
	return sum
}

// AggregateCart groups items by the email that added them. Each
// participant keeps the name recorded on their first item. Subtotals are
// exact; nothing is rounded here.
func AggregateCart(items []models.CartItem) (CartAggregate, error) {
	if len(items) == 0 {
		return CartAggregate{}, ErrEmptyCart
	}

	index := make(map[string]int, len(items))
	var agg CartAggregate
	for _, it := range items {
		i, ok := index[it.AddedByEmail]
		if !ok {
			i = len(agg.Participants)
			index[it.AddedByEmail] = i
			agg.Participants = append(agg.Participants, Participant{
				Email:    it.AddedByEmail,
				Name:     it.AddedByName,
				Subtotal: decimal.Zero,
			})
		}
		agg.Participants[i].Subtotal = agg.Participants[i].Subtotal.Add(it.LineTotal())
	}
	return agg, nil
}
