// Package catalog is the static restaurant catalog groups order from.
//
// The data ships embedded in the binary; there is no admin surface to edit
// it. Prices are decimals so they flow into cart items without conversion.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

//go:embed restaurants.json
var restaurantsJSON []byte

// MenuItem is one orderable dish.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

// Restaurant is a catalog entry with its full menu.
type Restaurant struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Cuisine      string          `json:"cuisine"`
	Rating       float64         `json:"rating"`
	DeliveryTime string          `json:"deliveryTime"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	Menu         []MenuItem      `json:"menu"`
}

// Catalog indexes restaurants by id. It is read-only after construction.
type Catalog struct {
	restaurants []Restaurant
	byID        map[string]int
}

// New builds a Catalog from restaurants. Duplicate restaurant ids are an
// error.
func New(restaurants []Restaurant) (*Catalog, error) {
	c := &Catalog{restaurants: restaurants, byID: make(map[string]int, len(restaurants))}
	for i, r := range restaurants {
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate restaurant id %q", r.ID)
		}
		c.byID[r.ID] = i
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded data is
// malformed, which is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		var rs []Restaurant
		if err := json.Unmarshal(restaurantsJSON, &rs); err != nil {
			panic(fmt.Sprintf("catalog: embedded data: %v", err))
		}
		c, err := New(rs)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// All returns every restaurant in catalog order.
func (c *Catalog) All() []Restaurant {
	out := make([]Restaurant, len(c.restaurants))
	copy(out, c.restaurants)
	return out
}

// Search matches query case-insensitively against name and cuisine. A
// blank query returns everything.
func (c *Catalog) Search(query string) []Restaurant {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}
	var out []Restaurant
	for _, r := range c.restaurants {
		if strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(strings.ToLower(r.Cuisine), q) {
			out = append(out, r)
		}
	}
	return out
}

// Restaurant looks up a restaurant by id.
func (c *Catalog) Restaurant(id string) (Restaurant, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Restaurant{}, false
	}
	return c.restaurants[i], true
}

// MenuItem looks up a dish on one restaurant's menu.
func (c *Catalog) MenuItem(restaurantID, itemID string) (MenuItem, bool) {
	r, ok := c.Restaurant(restaurantID)
	if !ok {
		return MenuItem{}, false
	}
	for _, it := range r.Menu {
		if it.ID == itemID {
			return it, true
		}
	}
	return MenuItem{}, false
}
