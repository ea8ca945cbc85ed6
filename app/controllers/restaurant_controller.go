package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/groupcart/pkg/catalog"
	"github.com/shashiranjanraj/groupcart/pkg/response"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

type RestaurantController struct {
	catalog *catalog.Catalog
}

func NewRestaurantController(cat *catalog.Catalog) *RestaurantController {
	return &RestaurantController{catalog: cat}
}

// Index lists restaurants, filtered by ?q= on name or cuisine.
func (c *RestaurantController) Index(w http.ResponseWriter, r *http.Request) {
	found := c.catalog.Search(r.URL.Query().Get("q"))
	if found == nil {
		found = []catalog.Restaurant{}
	}
	response.Success(w, found)
}

func (c *RestaurantController) Show(w http.ResponseWriter, r *http.Request) {
	rest, ok := c.catalog.Restaurant(router.Param(r, "id"))
	if !ok {
		response.NotFound(w, "restaurant not found")
		return
	}
	response.Success(w, rest)
}
