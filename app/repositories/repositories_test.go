package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/pkg/testkit"
)

func seedGroup(t *testing.T, r Repos, code string) models.Group {
	t.Helper()
	g := models.Group{Code: code}
	require.NoError(t, r.Groups.Create(context.Background(), &g))
	return g
}

func TestGroupLookups(t *testing.T) {
	ctx := context.Background()
	r := New(testkit.DB(t))
	g := seedGroup(t, r, "ABC234")

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, models.GroupBrowsing, g.Status)

	got, err := r.Groups.FindByCode(ctx, " abc234 ")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	exists, err := r.Groups.CodeExists(ctx, "ABC234")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = r.Groups.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = r.Groups.Create(ctx, &models.Group{Code: "ABC234"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGroupTransitionStatusIsGuarded(t *testing.T) {
	ctx := context.Background()
	r := New(testkit.DB(t))
	g := seedGroup(t, r, "TRANS2")
	open := []models.GroupStatus{models.GroupBrowsing, models.GroupCheckout}
	total := decimal.RequireFromString("42.50")

	n, err := r.Groups.TransitionStatus(ctx, g.ID, open, models.GroupOrdered, map[string]any{"order_total": total})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.Groups.TransitionStatus(ctx, g.ID, open, models.GroupOrdered, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got, err := r.Groups.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GroupOrdered, got.Status)
	require.NotNil(t, got.OrderTotal)
	assert.True(t, got.OrderTotal.Equal(total))
}

func TestMembersAddIsIdempotentPerEmail(t *testing.T) {
	ctx := context.Background()
	r := New(testkit.DB(t))
	g := seedGroup(t, r, "MEMBR2")

	added, err := r.Members.Add(ctx, &models.GroupMember{GroupID: g.ID, Email: "Alice@Example.com", FirstName: "Alice"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.Members.Add(ctx, &models.GroupMember{GroupID: g.ID, Email: "alice@example.com", FirstName: "Al"})
	require.NoError(t, err)
	assert.False(t, added)

	m, err := r.Members.Find(ctx, g.ID, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", m.FirstName)

	list, err := r.Members.List(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCartLifecycle(t *testing.T) {
	ctx := context.Background()
	r := New(testkit.DB(t))
	g := seedGroup(t, r, "CART23")

	first := models.CartItem{GroupID: g.ID, AddedByEmail: "a@x.com", AddedByName: "A", ItemName: "Pad Thai", Quantity: 1, Price: decimal.RequireFromString("12.99")}
	require.NoError(t, r.Cart.Add(ctx, &first))
	second := models.CartItem{GroupID: g.ID, AddedByEmail: "b@x.com", AddedByName: "B", ItemName: "Spring Rolls", Quantity: 2, Price: decimal.RequireFromString("6.50")}
	require.NoError(t, r.Cart.Add(ctx, &second))

	items, err := r.Cart.ListByGroup(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("12.99")))

	require.NoError(t, r.Cart.UpdateQuantity(ctx, second.ID, 3))
	got, err := r.Cart.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	assert.ErrorIs(t, r.Cart.UpdateQuantity(ctx, "missing", 1), ErrNotFound)

	require.NoError(t, r.Cart.Delete(ctx, first.ID))
	n, err := r.Cart.CountByGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	cleared, err := r.Cart.ClearGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared)
}

func TestOrderSnapshots(t *testing.T) {
	ctx := context.Background()
	r := New(testkit.DB(t))
	g := seedGroup(t, r, "ORDR23")

	o := models.Order{
		GroupID:     g.ID,
		Subtotal:    decimal.RequireFromString("100"),
		TaxRate:     decimal.RequireFromString("0.08"),
		TaxAmount:   decimal.RequireFromString("8"),
		TipRate:     decimal.RequireFromString("0.18"),
		TipAmount:   decimal.RequireFromString("18"),
		TotalAmount: decimal.RequireFromString("126"),
		OrderedAt:   time.Now().UTC(),
	}
	require.NoError(t, r.Orders.Create(ctx, &o))
	assert.Equal(t, models.OrderPlaced, o.Status)

	dup := o
	dup.ID = ""
	assert.ErrorIs(t, r.Orders.Create(ctx, &dup), ErrDuplicate)

	require.NoError(t, r.Orders.CreateItems(ctx, []models.OrderItem{
		{OrderID: o.ID, AddedByEmail: "b@x.com", AddedByName: "B", ItemName: "Tacos", Quantity: 1, Price: decimal.RequireFromString("30")},
		{OrderID: o.ID, AddedByEmail: "a@x.com", AddedByName: "A", ItemName: "Burrito", Quantity: 1, Price: decimal.RequireFromString("70")},
	}))
	items, err := r.Orders.Items(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Burrito", items[0].ItemName)

	require.NoError(t, r.Orders.CreateSummaries(ctx, []models.UserOrderSummary{
		{OrderID: o.ID, UserEmail: "b@x.com", UserName: "Zed", Subtotal: decimal.RequireFromString("30")},
		{OrderID: o.ID, UserEmail: "a@x.com", UserName: "Amy", Subtotal: decimal.RequireFromString("70")},
	}))
	sums, err := r.Orders.Summaries(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "Amy", sums[0].UserName)

	at := time.Now().UTC()
	require.NoError(t, r.Orders.MarkSummarySent(ctx, sums[0].ID, at))
	s, err := r.Orders.Summary(ctx, o.ID, "a@x.com")
	require.NoError(t, err)
	assert.True(t, s.InvoiceSent)
	require.NotNil(t, s.InvoiceSentAt)

	require.NoError(t, r.Orders.MarkInvoicesSent(ctx, o.ID))
	byGroup, err := r.Orders.FindByGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, byGroup.InvoicesSent)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := testkit.DB(t)
	tm := NewTxManager(db)
	boom := errors.New("boom")

	err := tm.WithinTx(ctx, func(r Repos) error {
		if err := r.Groups.Create(ctx, &models.Group{Code: "ROLLB2"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := New(db).Groups.CodeExists(ctx, "ROLLB2")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, tm.WithinTx(ctx, func(r Repos) error {
		return r.Groups.Create(ctx, &models.Group{Code: "COMMT2"})
	}))
	exists, err = New(db).Groups.CodeExists(ctx, "COMMT2")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNestedUndoesOnlyItsOwnWrites(t *testing.T) {
	ctx := context.Background()
	db := testkit.DB(t)
	boom := errors.New("boom")

	require.NoError(t, NewTxManager(db).WithinTx(ctx, func(r Repos) error {
		if err := r.Groups.Create(ctx, &models.Group{Code: "OUTER2"}); err != nil {
			return err
		}
		err := r.Nested(ctx, func(n Repos) error {
			if err := n.Groups.Create(ctx, &models.Group{Code: "INNER2"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		return nil
	}))

	r := New(db)
	outer, err := r.Groups.CodeExists(ctx, "OUTER2")
	require.NoError(t, err)
	inner, err := r.Groups.CodeExists(ctx, "INNER2")
	require.NoError(t, err)
	assert.True(t, outer)
	assert.False(t, inner)
}

func TestOrderRatesKeepSixDecimalPlaces(t *testing.T) {
	s, err := schema.Parse(&models.Order{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	for _, name := range []string{"TaxRate", "TipRate"} {
		f := s.LookUpField(name)
		require.NotNil(t, f, name)
		assert.Equal(t, "decimal(10,6)", f.TagSettings["TYPE"], name)
	}

	r := New(testkit.DB(t))
	ctx := context.Background()
	g := seedGroup(t, r, "RATE01")
	o := models.Order{
		GroupID:     g.ID,
		Subtotal:    decimal.RequireFromString("100.00"),
		TaxRate:     decimal.RequireFromString("0.08875"),
		TaxAmount:   decimal.RequireFromString("8.88"),
		TipRate:     decimal.RequireFromString("0.1825"),
		TipAmount:   decimal.RequireFromString("18.25"),
		TotalAmount: decimal.RequireFromString("127.13"),
		OrderedAt:   time.Now().UTC(),
	}
	require.NoError(t, r.Orders.Create(ctx, &o))

	got, err := r.Orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.TaxRate.Equal(o.TaxRate), "tax rate %s", got.TaxRate)
	assert.True(t, got.TipRate.Equal(o.TipRate), "tip rate %s", got.TipRate)
}
