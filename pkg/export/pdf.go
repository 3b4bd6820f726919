package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfRowHeight    = 7.0
	pdfHeaderHeight = 8.0
)

// PDFRenderer lays a table out on landscape A4 pages, repeating the header
// row on every page.
type PDFRenderer struct{}

// NewPDFRenderer builds a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render implements Renderer.
func (r *PDFRenderer) Render(w io.Writer, t Table) error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(false, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	colWidth := (pageW - left - right) / float64(len(t.Headers))

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 236, 245)
		for _, h := range t.Headers {
			pdf.CellFormat(colWidth, pdfHeaderHeight, tr(fit(pdf, h, colWidth)), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.AddPage()
	if t.Title != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 8, tr(t.Title), "", 1, "L", false, 0, "")
	}
	if !t.GeneratedAt.IsZero() {
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s, %d rows", t.GeneratedAt.Format("2006-01-02 15:04"), len(t.Rows)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	header()

	for _, row := range t.Rows {
		if pdf.GetY()+pdfRowHeight > pageH-bottom {
			pdf.AddPage()
			pdf.SetY(top)
			header()
		}
		for i := range t.Headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(colWidth, pdfRowHeight, tr(fit(pdf, value, colWidth)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// fit truncates s with an ellipsis so it fits in width at the current font.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
