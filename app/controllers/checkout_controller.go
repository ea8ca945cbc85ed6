package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/groupcart/app/services"
	"github.com/shashiranjanraj/groupcart/pkg/response"
)

type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

// checkoutRequest leaves groupId and the rates to the service so that
// missing or negative values answer 400.
type checkoutRequest struct {
	GroupID           string           `json:"groupId"`
	TaxRate           *decimal.Decimal `json:"taxRate"`
	TipRate           *decimal.Decimal `json:"tipRate"`
	CheckoutUserEmail string           `json:"checkoutUserEmail" validate:"nullable,email"`
	VenmoHandle       string           `json:"venmoHandle"`
}

// Store places the group's order. A caller with a participant token becomes
// the payer unless the body names someone else; once a payer is set only
// their token can change it.
func (c *CheckoutController) Store(w http.ResponseWriter, r *http.Request) {
	var body checkoutRequest
	if !decode(w, r, &body) {
		return
	}
	payer, caller := body.CheckoutUserEmail, ""
	if p := participant(r); p.GroupID == body.GroupID {
		caller = p.Email
		if payer == "" {
			payer = p.Email
		}
	}

	res, err := c.checkout.Checkout(r.Context(), services.CheckoutInput{
		GroupID:           body.GroupID,
		TaxRate:           body.TaxRate,
		TipRate:           body.TipRate,
		CheckoutUserEmail: payer,
		VenmoHandle:       body.VenmoHandle,
		CallerEmail:       caller,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, res)
}
