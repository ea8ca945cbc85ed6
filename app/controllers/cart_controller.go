package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/groupcart/app/services"
	"github.com/shashiranjanraj/groupcart/pkg/response"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

func (c *CartController) Index(w http.ResponseWriter, r *http.Request) {
	view, err := c.cart.List(r.Context(), router.Param(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, view)
}

type addItemRequest struct {
	MenuItemID          string `json:"menuItemId"          validate:"required"`
	Quantity            int    `json:"quantity"            validate:"nullable,between=1,99"`
	SpecialInstructions string `json:"specialInstructions" validate:"nullable,max=500"`
}

func (c *CartController) Store(w http.ResponseWriter, r *http.Request) {
	var body addItemRequest
	if !decode(w, r, &body) {
		return
	}
	item, err := c.cart.AddItem(r.Context(), participant(r), services.AddItemInput{
		GroupID:             router.Param(r, "id"),
		MenuItemID:          body.MenuItemID,
		Quantity:            body.Quantity,
		SpecialInstructions: body.SpecialInstructions,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, item)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"lte=99"`
}

// Update sets an item's quantity. Zero or less removes it.
func (c *CartController) Update(w http.ResponseWriter, r *http.Request) {
	var body updateQuantityRequest
	if !decode(w, r, &body) {
		return
	}
	removed, err := c.cart.UpdateQuantity(r.Context(), participant(r), router.Param(r, "item"), body.Quantity)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]bool{"removed": removed})
}

func (c *CartController) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := c.cart.Remove(r.Context(), participant(r), router.Param(r, "item")); err != nil {
		fail(w, r, err)
		return
	}
	response.NoContent(w)
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := c.cart.Clear(r.Context(), participant(r), router.Param(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]int64{"removed": n})
}
