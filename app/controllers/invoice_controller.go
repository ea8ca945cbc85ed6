package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/groupcart/app/services"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
	"github.com/shashiranjanraj/groupcart/pkg/response"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

type InvoiceController struct {
	invoices *services.InvoiceService
}

func NewInvoiceController(invoices *services.InvoiceService) *InvoiceController {
	return &InvoiceController{invoices: invoices}
}

type sendInvoicesRequest struct {
	OrderID string `json:"orderId"`
	GroupID string `json:"groupId"`
}

// Send emails every participant who has not yet received their invoice.
func (c *InvoiceController) Send(w http.ResponseWriter, r *http.Request) {
	var body sendInvoicesRequest
	if !decode(w, r, &body) {
		return
	}
	res, err := c.invoices.Dispatch(r.Context(), body.OrderID, body.GroupID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, res)
}

// PDF downloads the caller's own invoice for an order.
func (c *InvoiceController) PDF(w http.ResponseWriter, r *http.Request) {
	p := participant(r)
	pdf, filename, err := c.invoices.PDF(r.Context(), router.Param(r, "id"), p.Email)
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logger.WithCtx(r.Context()).Warn("invoice pdf write failed", "error", err)
	}
}
