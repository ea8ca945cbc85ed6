package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/groupcart/app/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(email, name, price string, qty int) models.CartItem {
	return models.CartItem{AddedByEmail: email, AddedByName: name, ItemName: "x", Price: d(price), Quantity: qty}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), "%s: want %s, got %s", field, want, got)
}

func TestAggregateCart(t *testing.T) {
	agg, err := AggregateCart([]models.CartItem{
		item("bob@x.com", "Bob", "10.00", 2),
		item("amy@x.com", "Amy", "4.25", 1),
		item("bob@x.com", "Robert", "1.50", 3),
	})
	require.NoError(t, err)
	require.Len(t, agg.Participants, 2)

	assert.Equal(t, "bob@x.com", agg.Participants[0].Email)
	assert.Equal(t, "Bob", agg.Participants[0].Name)
	assertMoney(t, "24.50", agg.Participants[0].Subtotal, "bob")
	assertMoney(t, "4.25", agg.Participants[1].Subtotal, "amy")
	assertMoney(t, "28.75", agg.Subtotal(), "total")
}

func TestAggregateCartEmpty(t *testing.T) {
	_, err := AggregateCart(nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCalculateOrder(t *testing.T) {
	type share struct{ sub, tax, tip, total string }
	cases := []struct {
		name         string
		items        []models.CartItem
		taxRate      string
		tipRate      string
		aggregate    share
		participants []share
	}{
		{
			name:         "thirty seventy split",
			items:        []models.CartItem{item("a@x.com", "A", "30", 1), item("b@x.com", "B", "70", 1)},
			taxRate:      "0.08",
			tipRate:      "0.18",
			aggregate:    share{"100", "8", "18", "126"},
			participants: []share{{"30", "2.40", "5.40", "37.80"}, {"70", "5.60", "12.60", "88.20"}},
		},
		{
			name:         "uneven proportions round per participant",
			items:        []models.CartItem{item("a@x.com", "A", "33.33", 1), item("b@x.com", "B", "66.67", 1)},
			taxRate:      "0.08",
			tipRate:      "0.18",
			aggregate:    share{"100", "8", "18", "126"},
			participants: []share{{"33.33", "2.67", "6.00", "42.00"}, {"66.67", "5.33", "12.00", "84.00"}},
		},
		{
			name:         "single participant matches aggregate",
			items:        []models.CartItem{item("a@x.com", "A", "12.99", 2), item("a@x.com", "A", "4.50", 1)},
			taxRate:      "0.0875",
			tipRate:      "0.2",
			aggregate:    share{"30.48", "2.67", "6.10", "39.24"},
			participants: []share{{"30.48", "2.67", "6.10", "39.24"}},
		},
		{
			name:         "zero rates",
			items:        []models.CartItem{item("a@x.com", "A", "5", 1), item("b@x.com", "B", "15", 1)},
			taxRate:      "0",
			tipRate:      "0",
			aggregate:    share{"20", "0", "0", "20"},
			participants: []share{{"5", "0", "0", "5"}, {"15", "0", "0", "15"}},
		},
		{
			name:         "zero subtotal gives every participant zero",
			items:        []models.CartItem{item("a@x.com", "A", "0", 1), item("b@x.com", "B", "0", 2)},
			taxRate:      "0.08",
			tipRate:      "0.18",
			aggregate:    share{"0", "0", "0", "0"},
			participants: []share{{"0", "0", "0", "0"}, {"0", "0", "0", "0"}},
		},
		{
			name:         "half cent rounds away from zero",
			items:        []models.CartItem{item("a@x.com", "A", "1.25", 1)},
			taxRate:      "0.1",
			tipRate:      "0",
			aggregate:    share{"1.25", "0.13", "0", "1.38"},
			participants: []share{{"1.25", "0.13", "0", "1.38"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			agg, err := AggregateCart(tc.items)
			require.NoError(t, err)

			calc, err := CalculateOrder(agg, d(tc.taxRate), d(tc.tipRate))
			require.NoError(t, err)

			assertMoney(t, tc.aggregate.sub, calc.Aggregate.Subtotal, "aggregate subtotal")
			assertMoney(t, tc.aggregate.tax, calc.Aggregate.Tax, "aggregate tax")
			assertMoney(t, tc.aggregate.tip, calc.Aggregate.Tip, "aggregate tip")
			assertMoney(t, tc.aggregate.total, calc.Aggregate.Total, "aggregate total")

			require.Len(t, calc.Participants, len(tc.participants))
			for i, want := range tc.participants {
				got := calc.Participants[i]
				assertMoney(t, want.sub, got.Subtotal, got.Email+" subtotal")
				assertMoney(t, want.tax, got.Tax, got.Email+" tax")
				assertMoney(t, want.tip, got.Tip, got.Email+" tip")
				assertMoney(t, want.total, got.Total, got.Email+" total")
			}
		})
	}
}

func TestCalculateOrderSubtotalsPartitionExactly(t *testing.T) {
	agg, err := AggregateCart([]models.CartItem{
		item("a@x.com", "A", "10", 1),
		item("b@x.com", "B", "10", 1),
		item("c@x.com", "C", "10", 1),
	})
	require.NoError(t, err)

	calc, err := CalculateOrder(agg, d("0.05"), d("0.0833"))
	require.NoError(t, err)

	subSum, tipSum := decimal.Zero, decimal.Zero
	for _, p := range calc.Participants {
		subSum = subSum.Add(p.Subtotal)
		tipSum = tipSum.Add(p.Tip)
	}
	assert.True(t, subSum.Equal(calc.Aggregate.Subtotal))

	// Each participant rounds 0.833 down; the aggregate rounds 2.499 up.
	// The cent of drift is left alone.
	assertMoney(t, "2.50", calc.Aggregate.Tip, "aggregate tip")
	assertMoney(t, "2.49", tipSum, "participant tip sum")
}

func TestCalculateOrderRejectsNegativeRates(t *testing.T) {
	agg, err := AggregateCart([]models.CartItem{item("a@x.com", "A", "10", 1)})
	require.NoError(t, err)

	_, err = CalculateOrder(agg, d("-0.01"), d("0.1"))
	assert.ErrorIs(t, err, ErrNegativeRate)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = CalculateOrder(agg, d("0.1"), d("-1"))
	assert.ErrorIs(t, err, ErrNegativeRate)
}
