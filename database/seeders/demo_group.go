package seeders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/repositories"
	"github.com/shashiranjanraj/groupcart/pkg/catalog"
)

// DemoCode is the join code of the seeded demo group.
const DemoCode = "DEMO42"

func init() {
	Register("demo_group", seedDemoGroup)
}

// seedDemoGroup creates a browsing group at Bella Italia with three members
// and a cart ready for checkout.
func seedDemoGroup(ctx context.Context, db *gorm.DB) error {
	return repositories.NewTxManager(db).WithinTx(ctx, func(r repositories.Repos) error {
		_, err := r.Groups.FindByCode(ctx, DemoCode)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		rest, _ := catalog.Default().Restaurant("rest-1")
		g := models.Group{Code: DemoCode, RestaurantID: rest.ID, RestaurantName: rest.Name}
		if err := r.Groups.Create(ctx, &g); err != nil {
			return err
		}

		cart := []struct {
			email, name, item string
			qty               int
		}{
			{"alice@example.com", "Alice", "item-1", 1},
			{"bob@example.com", "Bob", "item-2", 1},
			{"bob@example.com", "Bob", "item-5", 2},
			{"carol@example.com", "Carol", "item-3", 1},
		}
		for _, c := range cart {
			if _, err := r.Members.Add(ctx, &models.GroupMember{GroupID: g.ID, Email: c.email, FirstName: c.name}); err != nil {
				return err
			}
			mi, ok := catalog.Default().MenuItem(rest.ID, c.item)
			if !ok {
				return errors.New("seed: unknown menu item " + c.item)
			}
			it := models.CartItem{
				GroupID:         g.ID,
				AddedByEmail:    c.email,
				AddedByName:     c.name,
				MenuItemID:      mi.ID,
				ItemName:        mi.Name,
				ItemDescription: mi.Description,
				Quantity:        c.qty,
				Price:           mi.Price,
			}
			if err := r.Cart.Add(ctx, &it); err != nil {
				return err
			}
		}
		return nil
	})
}
