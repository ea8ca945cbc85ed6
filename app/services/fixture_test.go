package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/repositories"
	"github.com/shashiranjanraj/groupcart/pkg/audit"
	"github.com/shashiranjanraj/groupcart/pkg/cache"
	"github.com/shashiranjanraj/groupcart/pkg/groupcode"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
	"github.com/shashiranjanraj/groupcart/pkg/mail"
	"github.com/shashiranjanraj/groupcart/pkg/realtime"
	"github.com/shashiranjanraj/groupcart/pkg/testkit"
	"github.com/shashiranjanraj/groupcart/pkg/workerpool"
)

type fixture struct {
	ctx    context.Context
	db     *gorm.DB
	repos  repositories.Repos
	events *realtime.Recorder
	locker *cache.MemoryLocker
	mailer *mail.Fake
	audit  *audit.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testkit.DB(t)
	return &fixture{
		ctx:    context.Background(),
		db:     db,
		repos:  repositories.New(db),
		events: &realtime.Recorder{},
		locker: cache.NewMemoryLocker(),
		mailer: &mail.Fake{},
		audit:  &audit.Memory{},
	}
}

func (f *fixture) checkout() *CheckoutService {
	return NewCheckoutService(f.repos, repositories.NewTxManager(f.db), f.locker, f.events, logger.Discard()).
		WithDefaultRates(d("0.08"), d("0.18"))
}

func (f *fixture) invoices() *InvoiceService {
	return NewInvoiceService(f.repos, f.mailer, f.audit, f.events, logger.Discard())
}

func (f *fixture) group(t *testing.T) models.Group {
	t.Helper()
	code, err := groupcode.New()
	require.NoError(t, err)
	g := models.Group{Code: code, RestaurantID: "r1", RestaurantName: "Pizza Palace"}
	require.NoError(t, f.repos.Groups.Create(f.ctx, &g))
	return g
}

func (f *fixture) member(t *testing.T, groupID, email, name string) {
	t.Helper()
	_, err := f.repos.Members.Add(f.ctx, &models.GroupMember{GroupID: groupID, Email: email, FirstName: name})
	require.NoError(t, err)
}

func (f *fixture) addItem(t *testing.T, groupID, email, name, itemName, price string, qty int) models.CartItem {
	t.Helper()
	it := models.CartItem{
		GroupID:      groupID,
		AddedByEmail: email,
		AddedByName:  name,
		ItemName:     itemName,
		Price:        d(price),
		Quantity:     qty,
	}
	require.NoError(t, f.repos.Cart.Add(f.ctx, &it))
	return it
}

func rate(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// syncJobs runs submitted jobs inline.
type syncJobs struct{ errs []error }

func (s *syncJobs) Submit(_ string, job workerpool.Job) error {
	s.errs = append(s.errs, job(context.Background()))
	return nil
}
