package invoice

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// RenderPDF renders v as a single A4 page.
func RenderPDF(v View) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetCreationDate(v.OrderDate)
	pdf.SetModificationDate(v.OrderDate)
	pdf.SetTitle("Invoice "+v.OrderRef(), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, "Invoice", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 6, "Order #"+v.OrderRef(), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+longDate(v.OrderDate), "", 1, "L", false, 0, "")
	if v.RestaurantName != "" {
		pdf.CellFormat(0, 6, tr("Restaurant: "+v.RestaurantName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Bill to
	pdf.CellFormat(0, 6, "Bill To:", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(v.UserName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, v.UserEmail, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Items
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Order Items", "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := []float64{80, 25, 37.5, 37.5}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	for i, h := range []string{"Item", "Qty", "Price", "Total"} {
		align := "L"
		if i >= 2 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range v.Items {
		pdf.CellFormat(widths[0], 8, tr(it.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, strconv.Itoa(it.Quantity), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 8, money(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, money(it.Total()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	// Totals
	totalRow := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(120, 7, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, value, "", 1, "R", false, 0, "")
	}
	totalRow("Subtotal:", money(v.Subtotal), false)
	totalRow("Tax:", money(v.TaxAmount), false)
	totalRow("Tip:", money(v.TipAmount), false)
	pdf.Line(135, pdf.GetY()+1, 195, pdf.GetY()+1)
	pdf.Ln(2)
	totalRow("Total:", money(v.TotalAmount), true)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(102, 102, 102)
	if v.PayTo != "" {
		pdf.Ln(6)
		pdf.CellFormat(0, 6, "Pay "+money(v.TotalAmount)+" to "+v.PayTo+" on Venmo.", "", 1, "L", false, 0, "")
	}
	if v.DeliveryETA != nil {
		pdf.Ln(4)
		pdf.CellFormat(0, 6, "Estimated Delivery: "+longDateTime(*v.DeliveryETA), "", 1, "L", false, 0, "")
	}

	pdf.Ln(16)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Thank you for your order!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
