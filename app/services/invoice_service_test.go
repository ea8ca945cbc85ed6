package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/groupcart/pkg/realtime"
	"github.com/shashiranjanraj/groupcart/pkg/storage"
)

// placeOrder checks out a three-person cart and returns the order id and
// group id.
func placeOrder(t *testing.T, f *fixture) (string, string) {
	t.Helper()
	g := f.group(t)
	f.addItem(t, g.ID, "alice@example.com", "Alice", "Margherita", "12.00", 1)
	f.addItem(t, g.ID, "bob@example.com", "Bob", "Calzone", "15.00", 1)
	f.addItem(t, g.ID, "carol@example.com", "Carol", "Tiramisu", "7.50", 2)

	res, err := f.checkout().Checkout(f.ctx, CheckoutInput{GroupID: g.ID, CheckoutUserEmail: "alice@example.com", VenmoHandle: "alice-pays"})
	require.NoError(t, err)
	return res.OrderID, g.ID
}

func TestDispatchSendsOneInvoicePerParticipant(t *testing.T) {
	f := newFixture(t)
	orderID, groupID := placeOrder(t, f)

	res, err := f.invoices().Dispatch(f.ctx, orderID, groupID)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{Success: true, SentCount: 3}, res)

	msgs := f.mailer.SentTo("carol@example.com")
	require.Len(t, msgs, 1)
	html := msgs[0].GetHTML()
	assert.Contains(t, html, "Tiramisu")
	assert.NotContains(t, html, "Calzone", "invoices only list the participant's own items")
	assert.Contains(t, msgs[0].GetSubject(), "Pizza Palace")
	require.Len(t, msgs[0].Attachments(), 1)
	assert.Equal(t, "application/pdf", msgs[0].Attachments()[0].ContentType)
	assert.True(t, strings.HasPrefix(string(msgs[0].Attachments()[0].Content), "%PDF"))

	sums, err := f.repos.Orders.Summaries(f.ctx, orderID)
	require.NoError(t, err)
	for _, s := range sums {
		assert.True(t, s.InvoiceSent, s.UserEmail)
		assert.NotNil(t, s.InvoiceSentAt, s.UserEmail)
	}
	order, err := f.repos.Orders.FindByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.True(t, order.InvoicesSent)

	assert.Len(t, f.audit.Records(), 3)
	assert.Contains(t, f.events.Types(), realtime.InvoicesSent)
}

func TestDispatchPartialFailureKeepsSuccessfulMarks(t *testing.T) {
	f := newFixture(t)
	orderID, groupID := placeOrder(t, f)
	f.mailer.FailFor = map[string]error{"bob@example.com": errors.New("mailbox full")}

	res, err := f.invoices().Dispatch(f.ctx, orderID, groupID)
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	require.Len(t, de.Failed, 1)
	assert.Equal(t, "bob@example.com", de.Failed[0].Email)
	assert.Equal(t, 2, res.SentCount)
	assert.False(t, res.Success)

	sums, err := f.repos.Orders.Summaries(f.ctx, orderID)
	require.NoError(t, err)
	sent := map[string]bool{}
	for _, s := range sums {
		sent[s.UserEmail] = s.InvoiceSent
	}
	assert.Equal(t, map[string]bool{"alice@example.com": true, "bob@example.com": false, "carol@example.com": true}, sent)

	order, err := f.repos.Orders.FindByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.False(t, order.InvoicesSent)

	failures := 0
	for _, r := range f.audit.Records() {
		if !r.Success {
			failures++
			assert.Equal(t, "mailbox full", r.Error)
		}
	}
	assert.Equal(t, 1, failures)

	// Retrying only reaches the participant who was missed.
	f.mailer.FailFor = nil
	res, err = f.invoices().Dispatch(f.ctx, orderID, groupID)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{Success: true, SentCount: 1, SkippedCount: 2}, res)
	assert.Len(t, f.mailer.SentTo("alice@example.com"), 1)
	assert.Len(t, f.mailer.SentTo("bob@example.com"), 1)

	order, err = f.repos.Orders.FindByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.True(t, order.InvoicesSent)
}

func TestDispatchLookupErrors(t *testing.T) {
	f := newFixture(t)
	svc := f.invoices()

	_, err := svc.Dispatch(f.ctx, "", "g")
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Dispatch(f.ctx, "missing", "g")
	assert.Equal(t, KindNotFound, KindOf(err))

	orderID, _ := placeOrder(t, f)
	_, err = svc.Dispatch(f.ctx, orderID, "another-group")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDispatchArchivesPDFs(t *testing.T) {
	f := newFixture(t)
	orderID, groupID := placeOrder(t, f)
	disk := storage.NewLocalDisk(t.TempDir(), "http://localhost/storage")

	_, err := f.invoices().ArchiveTo(disk).Dispatch(f.ctx, orderID, groupID)
	require.NoError(t, err)

	sums, err := f.repos.Orders.Summaries(f.ctx, orderID)
	require.NoError(t, err)
	ok, err := disk.Exists(f.ctx, "invoices/"+orderID+"/"+sums[0].ID+".pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInvoicePDFForParticipant(t *testing.T) {
	f := newFixture(t)
	orderID, _ := placeOrder(t, f)

	pdf, name, err := f.invoices().PDF(f.ctx, orderID, "Bob@Example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))

	_, _, err = f.invoices().PDF(f.ctx, orderID, "nobody@example.com")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDispatchReportsEveryFailedSend(t *testing.T) {
	f := newFixture(t)
	orderID, groupID := placeOrder(t, f)
	down := errors.New("smtp down")
	f.mailer.FailFor = map[string]error{"alice@example.com": down, "bob@example.com": down, "carol@example.com": down}

	res, err := f.invoices().Dispatch(f.ctx, orderID, groupID)
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Zero(t, res.SentCount)
	assert.Zero(t, de.Sent)

	var emails []string
	for _, fd := range de.Failed {
		emails = append(emails, fd.Email)
	}
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com", "carol@example.com"}, emails)

	sums, err := f.repos.Orders.Summaries(f.ctx, orderID)
	require.NoError(t, err)
	for _, s := range sums {
		assert.False(t, s.InvoiceSent, s.UserEmail)
	}
}
