package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/groupcart/pkg/auth"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
	"github.com/shashiranjanraj/groupcart/pkg/storage"
)

func (f *fixture) payments(t *testing.T) (*PaymentService, *storage.LocalDisk) {
	t.Helper()
	disk := storage.NewLocalDisk(t.TempDir(), "http://files.test")
	return NewPaymentService(f.repos, disk, f.events, logger.Discard()), disk
}

func TestSetHandleClaimsPayerAndStoresQR(t *testing.T) {
	f := newFixture(t)
	g := f.group(t)
	svc, disk := f.payments(t)
	alice := auth.Participant{GroupID: g.ID, Email: "alice@example.com"}
	bob := auth.Participant{GroupID: g.ID, Email: "bob@example.com"}

	got, err := svc.SetHandle(f.ctx, alice, g.ID, "alice-pays")
	require.NoError(t, err)
	assert.Equal(t, "@alice-pays", got.VenmoHandle)
	assert.Equal(t, "alice@example.com", got.CheckoutUserEmail)
	assert.Equal(t, "http://files.test/qr/"+g.ID+"-alice-pays.png", got.VenmoQRCode)

	ok, err := disk.Exists(f.ctx, "qr/"+g.ID+"-alice-pays.png")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.SetHandle(f.ctx, bob, g.ID, "bob-pays")
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.SetHandle(f.ctx, alice, g.ID, "@x")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPaymentInfoPerParticipant(t *testing.T) {
	f := newFixture(t)
	g := f.group(t)
	f.addItem(t, g.ID, "alice@example.com", "Alice", "Margherita", "12.00", 1)
	f.addItem(t, g.ID, "bob@example.com", "Bob", "Calzone", "15.00", 1)
	_, err := f.checkout().Checkout(f.ctx, CheckoutInput{
		GroupID:           g.ID,
		CheckoutUserEmail: "alice@example.com",
		VenmoHandle:       "alice-pays",
	})
	require.NoError(t, err)
	svc, _ := f.payments(t)

	bob, err := svc.Info(f.ctx, g.ID, "bob@example.com")
	require.NoError(t, err)
	assertMoney(t, "18.90", bob.AmountOwed, "bob owes")
	assert.False(t, bob.IsPayer)
	assert.Equal(t, "@alice-pays", bob.VenmoHandle)
	assert.Equal(t, "venmo://paycharge?txn=pay&recipients=alice-pays", bob.DeepLink)
	assert.NotEmpty(t, bob.QRCodeURL, "qr is generated on first read")

	alice, err := svc.Info(f.ctx, g.ID, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, alice.IsPayer)
	assertMoney(t, "15.12", alice.AmountOwed, "alice share")

	nobody, err := svc.Info(f.ctx, g.ID, "dave@example.com")
	require.NoError(t, err)
	assertMoney(t, "0", nobody.AmountOwed, "no items")
}

func TestPaymentInfoNeedsHandleAndOrder(t *testing.T) {
	f := newFixture(t)
	g := f.group(t)
	svc, _ := f.payments(t)

	_, err := svc.Info(f.ctx, g.ID, "alice@example.com")
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.SetHandle(f.ctx, auth.Participant{GroupID: g.ID, Email: "alice@example.com"}, g.ID, "alice-pays")
	require.NoError(t, err)
	_, err = svc.Info(f.ctx, g.ID, "alice@example.com")
	assert.Equal(t, KindNotFound, KindOf(err), "no order placed yet")
}
