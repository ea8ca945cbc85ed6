package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/groupcart/app/services"
	"github.com/shashiranjanraj/groupcart/pkg/response"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

type venmoHandleRequest struct {
	VenmoHandle string `json:"venmoHandle" validate:"required,max=31"`
}

func (c *PaymentController) SetHandle(w http.ResponseWriter, r *http.Request) {
	var body venmoHandleRequest
	if !decode(w, r, &body) {
		return
	}
	g, err := c.payments.SetHandle(r.Context(), participant(r), router.Param(r, "id"), body.VenmoHandle)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, g)
}

// Show returns what the caller owes and how to pay the payer.
func (c *PaymentController) Show(w http.ResponseWriter, r *http.Request) {
	groupID := router.Param(r, "id")
	p := participant(r)
	if p.GroupID != groupID {
		response.Forbidden(w, services.ErrNotMember.Error())
		return
	}
	info, err := c.payments.Info(r.Context(), groupID, p.Email)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, info)
}
