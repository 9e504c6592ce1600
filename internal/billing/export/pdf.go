package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian/internal/billing/invoices"
)

// PDF renders invoices as downloadable documents.
type PDF struct {
	companyName string
}

func NewPDF(companyName string) *PDF {
	if companyName == "" {
		companyName = "Meridian"
	}
	return &PDF{companyName: companyName}
}

// Render produces a single-page A4 document for the invoice.
func (p *PDF) Render(inv *invoices.Invoice) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(inv.Number, false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(120, 10, p.companyName)
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 10, "INVOICE "+inv.Number, "", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 6, "Date: "+inv.InvoiceDate.Format("2006-01-02"))
	doc.Ln(6)
	if inv.DueDate != nil {
		doc.Cell(0, 6, "Due: "+inv.DueDate.Format("2006-01-02"))
		doc.Ln(6)
	}
	doc.Cell(0, 6, "Status: "+string(inv.Status))
	doc.Ln(10)

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(80, 7, "Description", "1", 0, "L", true, 0, "")
	doc.CellFormat(20, 7, "Qty", "1", 0, "R", true, 0, "")
	doc.CellFormat(30, 7, "Unit Price", "1", 0, "R", true, 0, "")
	doc.CellFormat(25, 7, "Tax", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 7, "Total", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 9)
	for _, line := range inv.Lines {
		doc.CellFormat(80, 7, line.Description, "1", 0, "L", false, 0, "")
		doc.CellFormat(20, 7, line.Quantity.String(), "1", 0, "R", false, 0, "")
		doc.CellFormat(30, 7, money(line.UnitPrice), "1", 0, "R", false, 0, "")
		doc.CellFormat(25, 7, money(line.TaxAmount), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 7, money(line.LineTotal), "1", 1, "R", false, 0, "")
	}

	doc.Ln(4)
	p.totalRow(doc, "Subtotal", inv.Subtotal, false)
	p.totalRow(doc, "Discount", inv.Discount.Neg(), false)
	p.totalRow(doc, "Tax", inv.TaxTotal, false)
	p.totalRow(doc, "Total", inv.Total, true)
	p.totalRow(doc, "Paid", inv.PaidAmount, false)
	p.totalRow(doc, "Balance", inv.Total.Sub(inv.PaidAmount), true)

	if inv.Notes != nil && *inv.Notes != "" {
		doc.Ln(8)
		doc.SetFont("Helvetica", "I", 9)
		doc.MultiCell(0, 5, *inv.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return buf.Bytes(), nil
}

func (p *PDF) totalRow(doc *gofpdf.Fpdf, label string, amount decimal.Decimal, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	doc.SetFont("Helvetica", style, 10)
	doc.CellFormat(155, 6, label, "", 0, "R", false, 0, "")
	doc.CellFormat(35, 6, money(amount), "", 1, "R", false, 0, "")
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
