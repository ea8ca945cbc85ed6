// Package invoice renders one participant's invoice as an HTML email body
// and a PDF attachment. Rendering is pure: no I/O beyond the writer.
package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Line is one item on the invoice.
type Line struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// Total is price × quantity.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// View is everything an invoice shows.
type View struct {
	UserName       string
	UserEmail      string
	OrderID        string
	RestaurantName string
	OrderDate      time.Time
	Items          []Line
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	TipAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	DeliveryETA    *time.Time
	PayTo          string // payer's handle, e.g. @alex; empty when unknown
}

// OrderRef is the short human reference printed on invoices: the first
// eight characters of the order id, upper-cased.
func (v View) OrderRef() string {
	id := v.OrderID
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// Subject is the email subject line.
func (v View) Subject() string {
	if v.RestaurantName != "" {
		return "Your invoice for " + v.RestaurantName + " (Order #" + v.OrderRef() + ")"
	}
	return "Your invoice (Order #" + v.OrderRef() + ")"
}

// Filename is the PDF attachment name.
func (v View) Filename() string {
	return "invoice-" + strings.ToLower(v.OrderRef()) + ".pdf"
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func longDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func longDateTime(t time.Time) string {
	return t.Format("January 2, 2006 3:04 PM")
}
