package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/repositories"
	"github.com/shashiranjanraj/groupcart/pkg/auth"
	"github.com/shashiranjanraj/groupcart/pkg/catalog"
	"github.com/shashiranjanraj/groupcart/pkg/realtime"
)

// maxQuantity caps a single cart line.
const maxQuantity = 99

type AddItemInput struct {
	GroupID             string
	MenuItemID          string
	Quantity            int
	SpecialInstructions string
}

// CartView is a group's cart with running per-participant subtotals.
type CartView struct {
	Items        []models.CartItem `json:"items"`
	Participants []Participant     `json:"participants"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
}

// CartService edits a group's shared cart. Concurrent edits are last write
// wins; every change is pushed to the group's realtime room.
type CartService struct {
	repos   repositories.Repos
	catalog *catalog.Catalog
	events  realtime.Publisher
	log     *slog.Logger
}

func NewCartService(repos repositories.Repos, cat *catalog.Catalog, events realtime.Publisher, log *slog.Logger) *CartService {
	return &CartService{repos: repos, catalog: cat, events: events, log: log}
}

// openGroup loads a group that p belongs to and that still accepts cart
// changes.
func (s *CartService) openGroup(ctx context.Context, p auth.Participant, groupID string) (models.Group, error) {
	if err := requireMember(p, groupID); err != nil {
		return models.Group{}, err
	}
	g, err := s.repos.Groups.FindByID(ctx, groupID)
	if err != nil {
		return models.Group{}, lookup("group", err)
	}
	if !g.Status.Open() {
		return models.Group{}, conflict(ErrGroupClosed.Error(), ErrGroupClosed)
	}
	return g, nil
}

// AddItem copies a menu item of the group's restaurant into the cart,
// attributed to p.
func (s *CartService) AddItem(ctx context.Context, p auth.Participant, in AddItemInput) (models.CartItem, error) {
	g, err := s.openGroup(ctx, p, in.GroupID)
	if err != nil {
		return models.CartItem{}, err
	}
	if g.RestaurantID == "" {
		return models.CartItem{}, validation("select a restaurant first")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 || in.Quantity > maxQuantity {
		return models.CartItem{}, validation("quantity must be between 1 and 99")
	}
	mi, ok := s.catalog.MenuItem(g.RestaurantID, in.MenuItemID)
	if !ok {
		return models.CartItem{}, notFound("menu item not found")
	}

	member, err := s.repos.Members.Find(ctx, g.ID, p.Email)
	if err != nil {
		if isNotFound(err) {
			return models.CartItem{}, &AppError{Kind: KindForbidden, Message: ErrNotMember.Error(), Err: ErrNotMember}
		}
		return models.CartItem{}, internal("failed to load member", err)
	}

	item := models.CartItem{
		GroupID:             g.ID,
		AddedByEmail:        member.Email,
		AddedByName:         member.FirstName,
		MenuItemID:          mi.ID,
		ItemName:            mi.Name,
		ItemDescription:     mi.Description,
		Quantity:            in.Quantity,
		Price:               mi.Price,
		SpecialInstructions: strings.TrimSpace(in.SpecialInstructions),
	}
	if err := s.repos.Cart.Add(ctx, &item); err != nil {
		return models.CartItem{}, internal("failed to add to cart", err)
	}

	s.changed(ctx, g.ID, "added", item.ID)
	return item, nil
}

// List returns the cart ordered by when items were added.
func (s *CartService) List(ctx context.Context, groupID string) (CartView, error) {
	if _, err := s.repos.Groups.FindByID(ctx, groupID); err != nil {
		return CartView{}, lookup("group", err)
	}
	items, err := s.repos.Cart.ListByGroup(ctx, groupID)
	if err != nil {
		return CartView{}, internal("failed to get cart items", err)
	}

	view := CartView{Items: items, Participants: []Participant{}, Subtotal: decimal.Zero}
	if len(items) > 0 {
		agg, _ := AggregateCart(items)
		view.Participants = agg.Participants
		view.Subtotal = agg.Subtotal()
	}
	return view, nil
}

// ownedItem loads an item of an open group and checks p added it.
func (s *CartService) ownedItem(ctx context.Context, p auth.Participant, itemID string) (models.CartItem, error) {
	item, err := s.repos.Cart.FindByID(ctx, itemID)
	if err != nil {
		return models.CartItem{}, lookup("cart item", err)
	}
	if item.GroupID != p.GroupID {
		return models.CartItem{}, notFound("cart item not found")
	}
	if _, err := s.openGroup(ctx, p, item.GroupID); err != nil {
		return models.CartItem{}, err
	}
	if !strings.EqualFold(item.AddedByEmail, p.Email) {
		return models.CartItem{}, &AppError{Kind: KindForbidden, Message: ErrNotOwner.Error(), Err: ErrNotOwner}
	}
	return item, nil
}

// UpdateQuantity changes one of p's items. A quantity of zero or less
// removes the item; removed reports whether that happened.
func (s *CartService) UpdateQuantity(ctx context.Context, p auth.Participant, itemID string, quantity int) (removed bool, err error) {
	item, err := s.ownedItem(ctx, p, itemID)
	if err != nil {
		return false, err
	}
	if quantity > maxQuantity {
		return false, validation("quantity must be between 1 and 99")
	}
	if quantity <= 0 {
		if err := s.repos.Cart.Delete(ctx, item.ID); err != nil {
			return false, internal("failed to delete cart item", err)
		}
		s.changed(ctx, item.GroupID, "removed", item.ID)
		return true, nil
	}
	if err := s.repos.Cart.UpdateQuantity(ctx, item.ID, quantity); err != nil {
		return false, lookup("cart item", err)
	}
	s.changed(ctx, item.GroupID, "updated", item.ID)
	return false, nil
}

// Remove deletes one of p's items.
func (s *CartService) Remove(ctx context.Context, p auth.Participant, itemID string) error {
	item, err := s.ownedItem(ctx, p, itemID)
	if err != nil {
		return err
	}
	if err := s.repos.Cart.Delete(ctx, item.ID); err != nil {
		return internal("failed to delete cart item", err)
	}
	s.changed(ctx, item.GroupID, "removed", item.ID)
	return nil
}

// Clear empties the whole cart of a group.
func (s *CartService) Clear(ctx context.Context, p auth.Participant, groupID string) (int64, error) {
	if _, err := s.openGroup(ctx, p, groupID); err != nil {
		return 0, err
	}
	n, err := s.repos.Cart.ClearGroup(ctx, groupID)
	if err != nil {
		return 0, internal("failed to clear cart", err)
	}
	s.log.Info("cart cleared", "group_id", groupID, "by", p.Email, "removed", n)
	s.changed(ctx, groupID, "cleared", "")
	return n, nil
}

func (s *CartService) changed(ctx context.Context, groupID, action, itemID string) {
	data := map[string]any{"action": action}
	if itemID != "" {
		data["itemId"] = itemID
	}
	s.events.Publish(ctx, realtime.Event{Type: realtime.CartUpdated, GroupID: groupID, Data: data})
}
