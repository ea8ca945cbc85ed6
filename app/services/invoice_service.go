package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/repositories"
	"github.com/shashiranjanraj/groupcart/pkg/audit"
	"github.com/shashiranjanraj/groupcart/pkg/invoice"
	"github.com/shashiranjanraj/groupcart/pkg/mail"
	"github.com/shashiranjanraj/groupcart/pkg/metrics"
	"github.com/shashiranjanraj/groupcart/pkg/realtime"
	"github.com/shashiranjanraj/groupcart/pkg/reqid"
	"github.com/shashiranjanraj/groupcart/pkg/storage"
)

// DispatchResult reports one dispatch run.
type DispatchResult struct {
	Success      bool `json:"success"`
	SentCount    int  `json:"sentCount"`
	SkippedCount int  `json:"skippedCount"`
}

// FailedDelivery names a participant whose invoice could not be sent.
type FailedDelivery struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// DispatchError is returned when at least one invoice failed. Invoices that
// did go out stay marked as sent, so a retry only targets the failures.
type DispatchError struct {
	OrderID string
	Sent    int
	Failed  []FailedDelivery
}

func (e *DispatchError) Error() string {
	emails := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		emails[i] = f.Email
	}
	return fmt.Sprintf("invoices: %d of %d failed for order %s: %s",
		len(e.Failed), len(e.Failed)+e.Sent, e.OrderID, strings.Join(emails, ", "))
}

// InvoiceService emails every participant their own invoice.
type InvoiceService struct {
	repos  repositories.Repos
	mailer mail.Mailer
	audit  audit.Recorder
	events realtime.Publisher
	disk   storage.Disk
	log    *slog.Logger
	now    func() time.Time
}

func NewInvoiceService(repos repositories.Repos, mailer mail.Mailer, rec audit.Recorder, events realtime.Publisher, log *slog.Logger) *InvoiceService {
	return &InvoiceService{
		repos:  repos,
		mailer: mailer,
		audit:  rec,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// ArchiveTo keeps a copy of every sent PDF on disk.
func (s *InvoiceService) ArchiveTo(disk storage.Disk) *InvoiceService {
	s.disk = disk
	return s
}

// settlement is everything needed to render the invoices of one order.
type settlement struct {
	order     models.Order
	group     models.Group
	items     []models.OrderItem
	summaries []models.UserOrderSummary
}

func (s *InvoiceService) load(ctx context.Context, orderID, groupID string) (settlement, error) {
	var st settlement

	order, err := s.repos.Orders.FindByID(ctx, orderID)
	if err != nil {
		return st, lookup("order", err)
	}
	if groupID != "" && order.GroupID != groupID {
		return st, notFound("order not found")
	}
	st.order = order

	// A missing group only costs the restaurant name and payee.
	group, err := s.repos.Groups.FindByID(ctx, order.GroupID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return st, internal("failed to load group", err)
	}
	st.group = group

	if st.items, err = s.repos.Orders.Items(ctx, orderID); err != nil {
		return st, internal("failed to load order items", err)
	}
	if len(st.items) == 0 {
		return st, notFound("order items not found")
	}
	if st.summaries, err = s.repos.Orders.Summaries(ctx, orderID); err != nil {
		return st, internal("failed to load user summaries", err)
	}
	if len(st.summaries) == 0 {
		return st, notFound("user summaries not found")
	}
	return st, nil
}

// view builds the invoice of one participant, listing only their items.
func (st settlement) view(sum models.UserOrderSummary) invoice.View {
	v := invoice.View{
		UserName:       sum.UserName,
		UserEmail:      sum.UserEmail,
		OrderID:        st.order.ID,
		RestaurantName: st.group.RestaurantName,
		OrderDate:      st.order.OrderedAt,
		Subtotal:       sum.Subtotal,
		TaxAmount:      sum.TaxAmount,
		TipAmount:      sum.TipAmount,
		TotalAmount:    sum.TotalAmount,
		DeliveryETA:    st.order.DeliveryETA,
		PayTo:          st.group.VenmoHandle,
	}
	if v.DeliveryETA == nil {
		v.DeliveryETA = st.group.DeliveryETA
	}
	for _, it := range st.items {
		if strings.EqualFold(it.AddedByEmail, sum.UserEmail) {
			v.Items = append(v.Items, invoice.Line{Name: it.ItemName, Quantity: it.Quantity, Price: it.Price})
		}
	}
	return v
}

// Dispatch sends an invoice to every participant of the order who has not
// received one yet. All sends run concurrently and Dispatch waits for every
// one of them. When any fails it returns a *DispatchError; the order is
// only flagged invoices_sent once every participant has been served.
func (s *InvoiceService) Dispatch(ctx context.Context, orderID, groupID string) (DispatchResult, error) {
	if orderID == "" || groupID == "" {
		return DispatchResult{}, validation("orderId and groupId are required")
	}
	st, err := s.load(ctx, orderID, groupID)
	if err != nil {
		return DispatchResult{}, err
	}
	log := s.log.With("order_id", orderID, "group_id", groupID)

	var (
		result DispatchResult
		mu     sync.Mutex
		failed []FailedDelivery
		g      errgroup.Group
	)
	for _, sum := range st.summaries {
		if sum.InvoiceSent {
			result.SkippedCount++
			metrics.InvoiceSends.WithLabelValues("skipped").Inc()
			continue
		}
		g.Go(func() error {
			err := s.deliver(ctx, st, sum)
			s.audit.Record(ctx, audit.Delivery{
				OrderID:   orderID,
				GroupID:   groupID,
				Email:     sum.UserEmail,
				Success:   err == nil,
				Error:     errString(err),
				RequestID: reqid.FromCtx(ctx),
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error("invoice send failed", "email", sum.UserEmail, "error", err)
				metrics.InvoiceSends.WithLabelValues("failed").Inc()
				failed = append(failed, FailedDelivery{Email: sum.UserEmail, Error: err.Error()})
				return err
			}
			metrics.InvoiceSends.WithLabelValues("sent").Inc()
			result.SentCount++
			return nil
		})
	}
	// A failed send does not cancel the others.
	if err := g.Wait(); err != nil {
		return result, &DispatchError{OrderID: orderID, Sent: result.SentCount, Failed: failed}
	}

	if err := s.repos.Orders.MarkInvoicesSent(ctx, orderID); err != nil {
		return result, internal("failed to mark invoices sent", err)
	}
	result.Success = true
	log.Info("invoices sent", "sent", result.SentCount, "skipped", result.SkippedCount)
	s.events.Publish(ctx, realtime.Event{
		Type:    realtime.InvoicesSent,
		GroupID: st.order.GroupID,
		Data:    map[string]any{"orderId": orderID, "sentCount": result.SentCount},
	})
	return result, nil
}

// deliver renders, sends and marks one participant's invoice.
func (s *InvoiceService) deliver(ctx context.Context, st settlement, sum models.UserOrderSummary) error {
	v := st.view(sum)
	html, err := invoice.RenderHTML(v)
	if err != nil {
		return err
	}
	pdf, err := invoice.RenderPDF(v)
	if err != nil {
		return err
	}

	if s.disk != nil {
		path := fmt.Sprintf("invoices/%s/%s.pdf", st.order.ID, sum.ID)
		if err := s.disk.Put(ctx, path, pdf, "application/pdf"); err != nil {
			s.log.Warn("invoice archive failed", "path", path, "error", err)
		}
	}

	msg := mail.To(sum.UserEmail).
		Subject(v.Subject()).
		HTML(html).
		Attach(v.Filename(), "application/pdf", pdf)
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}

	if err := s.repos.Orders.MarkSummarySent(ctx, sum.ID, s.now().UTC()); err != nil {
		return fmt.Errorf("sent but not recorded: %w", err)
	}
	return nil
}

// PDF renders the invoice of one participant for download.
func (s *InvoiceService) PDF(ctx context.Context, orderID, email string) ([]byte, string, error) {
	st, err := s.load(ctx, orderID, "")
	if err != nil {
		return nil, "", err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, sum := range st.summaries {
		if strings.EqualFold(sum.UserEmail, email) {
			v := st.view(sum)
			pdf, err := invoice.RenderPDF(v)
			if err != nil {
				return nil, "", internal("failed to render invoice", err)
			}
			return pdf, v.Filename(), nil
		}
	}
	return nil, "", notFound("no invoice for this participant")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
