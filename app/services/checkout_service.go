package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/repositories"
	"github.com/shashiranjanraj/groupcart/pkg/cache"
	"github.com/shashiranjanraj/groupcart/pkg/metrics"
	"github.com/shashiranjanraj/groupcart/pkg/payment"
	"github.com/shashiranjanraj/groupcart/pkg/realtime"
	"github.com/shashiranjanraj/groupcart/pkg/workerpool"
)

// ratePlaces is the precision orders keep tax and tip rates at.
const ratePlaces = 6

// CheckoutInput places the order of a group. Nil rates fall back to the
// service defaults.
type CheckoutInput struct {
	GroupID           string
	TaxRate           *decimal.Decimal
	TipRate           *decimal.Decimal
	CheckoutUserEmail string
	VenmoHandle       string

	// CallerEmail is the authenticated participant placing the order, if
	// any. Once a group has a payer only they may change the payer or the
	// venmo handle.
	CallerEmail string
}

// CheckoutResult is the snapshot written by a successful checkout.
type CheckoutResult struct {
	OrderID       string                    `json:"orderId"`
	Order         models.Order              `json:"order"`
	UserSummaries []models.UserOrderSummary `json:"userSummaries"`
}

// Dispatcher sends the invoices of a placed order.
type Dispatcher interface {
	Dispatch(ctx context.Context, orderID, groupID string) (DispatchResult, error)
}

// Submitter runs background jobs. *workerpool.Pool satisfies it.
type Submitter interface {
	Submit(name string, job workerpool.Job) error
}

// CheckoutService turns a group's cart into an order.
type CheckoutService struct {
	repos   repositories.Repos
	tx      *repositories.TxManager
	locker  cache.Locker
	lockTTL time.Duration
	events  realtime.Publisher
	log     *slog.Logger
	now     func() time.Time

	defaultTax decimal.Decimal
	defaultTip decimal.Decimal

	jobs     Submitter
	invoices Dispatcher
}

func NewCheckoutService(repos repositories.Repos, tx *repositories.TxManager, locker cache.Locker, events realtime.Publisher, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		repos:   repos,
		tx:      tx,
		locker:  locker,
		lockTTL: 30 * time.Second,
		events:  events,
		log:     log,
		now:     time.Now,
	}
}

// WithDefaultRates sets the rates used when a request omits them.
func (s *CheckoutService) WithDefaultRates(tax, tip decimal.Decimal) *CheckoutService {
	s.defaultTax, s.defaultTip = tax, tip
	return s
}

// WithLockTTL bounds how long a crashed checkout can block its group.
func (s *CheckoutService) WithLockTTL(ttl time.Duration) *CheckoutService {
	if ttl > 0 {
		s.lockTTL = ttl
	}
	return s
}

// WithAutoSend dispatches invoices in the background after every checkout.
func (s *CheckoutService) WithAutoSend(jobs Submitter, invoices Dispatcher) *CheckoutService {
	s.jobs, s.invoices = jobs, invoices
	return s
}

// Checkout aggregates the cart, splits tax and tip, and writes the order,
// its items and one summary per participant. The group is flipped to
// ordered and the cart emptied in the same transaction, so either all of it
// happens or none of it does.
//
// At most one order exists per group: a per-group lock serialises callers,
// the status flip only matches an open group, and orders.group_id is
// unique.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	start := s.now()

	if in.GroupID == "" {
		return CheckoutResult{}, validation("groupId is required")
	}
	taxRate, tipRate := s.defaultTax, s.defaultTip
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	if in.TipRate != nil {
		tipRate = *in.TipRate
	}
	if taxRate.IsNegative() || tipRate.IsNegative() {
		return CheckoutResult{}, &AppError{Kind: KindValidation, Message: "tax and tip rates must not be negative", Err: ErrNegativeRate}
	}
	if !taxRate.Equal(taxRate.Round(ratePlaces)) || !tipRate.Equal(tipRate.Round(ratePlaces)) {
		return CheckoutResult{}, validation("tax and tip rates carry at most 6 decimal places")
	}
	handle := ""
	if in.VenmoHandle != "" {
		h, err := payment.ValidateHandle(in.VenmoHandle)
		if err != nil {
			return CheckoutResult{}, &AppError{Kind: KindValidation, Message: "invalid venmo handle", Err: err}
		}
		handle = h
	}

	release, err := s.locker.Acquire(ctx, "checkout:"+in.GroupID, s.lockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrNotAcquired) {
			metrics.Checkouts.WithLabelValues("locked").Inc()
			return CheckoutResult{}, conflict(ErrLocked.Error(), ErrLocked)
		}
		metrics.Checkouts.WithLabelValues("error").Inc()
		return CheckoutResult{}, internal("failed to lock group", err)
	}
	defer release()

	log := s.log.With("group_id", in.GroupID)

	var result CheckoutResult
	err = s.tx.WithinTx(ctx, func(r repositories.Repos) error {
		group, err := r.Groups.FindByID(ctx, in.GroupID)
		if err != nil {
			return lookup("group", err)
		}
		if !group.Status.Open() {
			return conflict(ErrAlreadyOrdered.Error(), ErrAlreadyOrdered)
		}
		extra, err := payerFields(group, in.CheckoutUserEmail, handle, in.CallerEmail)
		if err != nil {
			return err
		}

		items, err := r.Cart.ListByGroup(ctx, group.ID)
		if err != nil {
			return internal("failed to load cart", err)
		}
		if len(items) == 0 {
			return &AppError{Kind: KindValidation, Message: ErrCartEmpty.Error(), Err: ErrCartEmpty}
		}

		agg, err := AggregateCart(items)
		if err != nil {
			return internal("failed to aggregate cart", err)
		}
		calc, err := CalculateOrder(agg, taxRate, tipRate)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		order := models.Order{
			GroupID:     group.ID,
			Status:      models.OrderPlaced,
			Subtotal:    calc.Aggregate.Subtotal,
			TaxRate:     calc.TaxRate,
			TaxAmount:   calc.Aggregate.Tax,
			TipRate:     calc.TipRate,
			TipAmount:   calc.Aggregate.Tip,
			TotalAmount: calc.Aggregate.Total,
			OrderedAt:   now,
		}
		if err := r.Orders.Create(ctx, &order); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return conflict(ErrAlreadyOrdered.Error(), ErrAlreadyOrdered)
			}
			return internal("failed to create order", err)
		}

		orderItems := make([]models.OrderItem, len(items))
		for i, it := range items {
			orderItems[i] = models.OrderItem{
				OrderID:             order.ID,
				AddedByEmail:        it.AddedByEmail,
				AddedByName:         it.AddedByName,
				ItemName:            it.ItemName,
				Quantity:            it.Quantity,
				Price:               it.Price,
				SpecialInstructions: it.SpecialInstructions,
			}
		}
		if err := r.Orders.CreateItems(ctx, orderItems); err != nil {
			return internal("failed to create order items", err)
		}

		summaries := make([]models.UserOrderSummary, len(calc.Participants))
		for i, p := range calc.Participants {
			summaries[i] = models.UserOrderSummary{
				OrderID:     order.ID,
				UserEmail:   p.Email,
				UserName:    p.Name,
				Subtotal:    p.Subtotal,
				TaxAmount:   p.Tax,
				TipAmount:   p.Tip,
				TotalAmount: p.Total,
			}
		}
		if err := r.Orders.CreateSummaries(ctx, summaries); err != nil {
			return internal("failed to create user summaries", err)
		}

		extra["order_total"] = calc.Aggregate.Total
		var flipped int64
		err = r.Nested(ctx, func(n repositories.Repos) error {
			var err error
			flipped, err = n.Groups.TransitionStatus(ctx, group.ID,
				[]models.GroupStatus{models.GroupBrowsing, models.GroupCheckout}, models.GroupOrdered, extra)
			return err
		})
		switch {
		case err != nil:
			// The unique order index still holds; the group can be fixed by hand.
			log.Error("checkout: group status update failed", "order_id", order.ID, "error", err)
		case flipped == 0:
			return conflict(ErrAlreadyOrdered.Error(), ErrAlreadyOrdered)
		}

		if _, err := r.Cart.ClearGroup(ctx, group.ID); err != nil {
			return internal("failed to clear cart", err)
		}

		result = CheckoutResult{OrderID: order.ID, Order: order, UserSummaries: summaries}
		return nil
	})
	if err != nil {
		metrics.Checkouts.WithLabelValues(checkoutOutcome(err)).Inc()
		if KindOf(err) == KindInternal {
			log.Error("checkout failed", "error", err)
		}
		return CheckoutResult{}, err
	}

	metrics.ObserveCheckout(start, len(result.UserSummaries))
	log.Info("order placed",
		"order_id", result.OrderID,
		"participants", len(result.UserSummaries),
		"total", result.Order.TotalAmount.StringFixed(2),
	)
	s.events.Publish(ctx, realtime.Event{
		Type:    realtime.OrderPlaced,
		GroupID: in.GroupID,
		Data:    map[string]any{"orderId": result.OrderID, "totalAmount": result.Order.TotalAmount},
	})
	s.autoSend(result.OrderID, in.GroupID)
	return result, nil
}

// payerFields returns the group columns checkout may set for the payer.
// A group without a payer takes whoever the request names. Once a payer is
// set, only a caller authenticated as that payer can hand over or change
// the handle. A new handle invalidates the stored QR code; a new payer
// without a handle drops the previous payer's handle.
func payerFields(g models.Group, payer, handle, caller string) (map[string]any, error) {
	fields := map[string]any{}
	current := g.CheckoutUserEmail
	isPayer := current != "" && strings.EqualFold(caller, current)

	newPayer := payer != "" && !strings.EqualFold(payer, current)
	newHandle := handle != "" && handle != g.VenmoHandle
	if current != "" && (newPayer || newHandle) && !isPayer {
		return nil, forbidden("only the payer can change the payer or the venmo handle")
	}

	if newPayer {
		fields["checkout_user_email"] = payer
		current = payer
		if !newHandle {
			fields["venmo_handle"] = ""
			fields["venmo_qr_code"] = ""
		}
	}
	if newHandle {
		if current == "" {
			return nil, validation("checkoutUserEmail is required with venmoHandle")
		}
		fields["venmo_handle"] = handle
		fields["venmo_qr_code"] = ""
	}
	return fields, nil
}

func (s *CheckoutService) autoSend(orderID, groupID string) {
	if s.jobs == nil || s.invoices == nil {
		return
	}
	err := s.jobs.Submit("invoices.send", func(ctx context.Context) error {
		_, err := s.invoices.Dispatch(ctx, orderID, groupID)
		return err
	})
	if err != nil {
		s.log.Warn("checkout: invoice dispatch not scheduled", "order_id", orderID, "error", err)
	}
}

func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, ErrCartEmpty):
		return "empty"
	case errors.Is(err, ErrAlreadyOrdered):
		return "conflict"
	case KindOf(err) == KindInternal:
		return "error"
	default:
		return "invalid"
	}
}
