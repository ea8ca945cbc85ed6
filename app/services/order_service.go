package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/repositories"
	"github.com/shashiranjanraj/groupcart/pkg/auth"
	"github.com/shashiranjanraj/groupcart/pkg/realtime"
)

// OrderDetail is an order with its frozen items and settlement records.
type OrderDetail struct {
	Order         models.Order              `json:"order"`
	Items         []models.OrderItem        `json:"items"`
	UserSummaries []models.UserOrderSummary `json:"userSummaries"`
}

// OrderService reads placed orders and tracks their fulfilment.
type OrderService struct {
	repos  repositories.Repos
	tx     *repositories.TxManager
	events realtime.Publisher
	log    *slog.Logger
}

func NewOrderService(repos repositories.Repos, tx *repositories.TxManager, events realtime.Publisher, log *slog.Logger) *OrderService {
	return &OrderService{repos: repos, tx: tx, events: events, log: log}
}

func (s *OrderService) Get(ctx context.Context, orderID string) (OrderDetail, error) {
	o, err := s.repos.Orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderDetail{}, lookup("order", err)
	}
	return s.detail(ctx, o)
}

// ByGroup returns the order placed by a group.
func (s *OrderService) ByGroup(ctx context.Context, groupID string) (OrderDetail, error) {
	o, err := s.repos.Orders.FindByGroup(ctx, groupID)
	if err != nil {
		return OrderDetail{}, lookup("order", err)
	}
	return s.detail(ctx, o)
}

func (s *OrderService) detail(ctx context.Context, o models.Order) (OrderDetail, error) {
	items, err := s.repos.Orders.Items(ctx, o.ID)
	if err != nil {
		return OrderDetail{}, internal("failed to get order items", err)
	}
	sums, err := s.repos.Orders.Summaries(ctx, o.ID)
	if err != nil {
		return OrderDetail{}, internal("failed to get user summaries", err)
	}
	return OrderDetail{Order: o, Items: items, UserSummaries: sums}, nil
}

// UpdateStatus advances the order through placed, preparing, in_transit
// and delivered. Delivering the order also marks its group delivered.
func (s *OrderService) UpdateStatus(ctx context.Context, p auth.Participant, orderID string, to models.OrderStatus) (models.Order, error) {
	if !to.Valid() {
		return models.Order{}, validation("unknown order status " + string(to))
	}

	var out models.Order
	err := s.tx.WithinTx(ctx, func(r repositories.Repos) error {
		o, err := r.Orders.FindByID(ctx, orderID)
		if err != nil {
			return lookup("order", err)
		}
		if err := requireMember(p, o.GroupID); err != nil {
			return err
		}
		if !o.Status.CanAdvanceTo(to) {
			return conflict("order cannot move from "+string(o.Status)+" to "+string(to), nil)
		}
		if err := r.Orders.Update(ctx, o.ID, map[string]any{"status": to}); err != nil {
			return internal("failed to update order", err)
		}
		if to == models.OrderDelivered {
			if _, err := r.Groups.TransitionStatus(ctx, o.GroupID,
				[]models.GroupStatus{models.GroupOrdered}, models.GroupDelivered, nil); err != nil {
				return internal("failed to update group", err)
			}
		}
		o.Status = to
		out = o
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.log.Info("order status updated", "order_id", out.ID, "status", out.Status)
	s.events.Publish(ctx, realtime.Event{
		Type:    realtime.GroupUpdated,
		GroupID: out.GroupID,
		Data:    map[string]any{"orderId": out.ID, "orderStatus": out.Status},
	})
	return out, nil
}

// SetDeliveryETA records the expected delivery on the order and its group.
func (s *OrderService) SetDeliveryETA(ctx context.Context, p auth.Participant, orderID string, eta time.Time) (models.Order, error) {
	eta = eta.UTC()
	var out models.Order
	err := s.tx.WithinTx(ctx, func(r repositories.Repos) error {
		o, err := r.Orders.FindByID(ctx, orderID)
		if err != nil {
			return lookup("order", err)
		}
		if err := requireMember(p, o.GroupID); err != nil {
			return err
		}
		if err := r.Orders.Update(ctx, o.ID, map[string]any{"delivery_eta": eta}); err != nil {
			return internal("failed to update order", err)
		}
		if err := r.Groups.Update(ctx, o.GroupID, map[string]any{"delivery_eta": eta}); err != nil && !isNotFound(err) {
			return internal("failed to update group", err)
		}
		o.DeliveryETA = &eta
		out = o
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	s.events.Publish(ctx, realtime.Event{
		Type:    realtime.GroupUpdated,
		GroupID: out.GroupID,
		Data:    map[string]any{"orderId": out.ID, "deliveryEta": eta},
	})
	return out, nil
}
