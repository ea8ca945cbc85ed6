package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/services"
	"github.com/shashiranjanraj/groupcart/pkg/response"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	detail, err := c.orders.Get(r.Context(), router.Param(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, detail)
}

// ByGroup returns the order placed by a group.
func (c *OrderController) ByGroup(w http.ResponseWriter, r *http.Request) {
	detail, err := c.orders.ByGroup(r.Context(), router.Param(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, detail)
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,in=placed,preparing,in_transit,delivered"`
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body orderStatusRequest
	if !decode(w, r, &body) {
		return
	}
	o, err := c.orders.UpdateStatus(r.Context(), participant(r), router.Param(r, "id"), models.OrderStatus(body.Status))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, o)
}

func (c *OrderController) SetDeliveryETA(w http.ResponseWriter, r *http.Request) {
	var body deliveryETARequest
	if !decode(w, r, &body) || !body.check(w) {
		return
	}
	o, err := c.orders.SetDeliveryETA(r.Context(), participant(r), router.Param(r, "id"), body.DeliveryETA)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, o)
}
