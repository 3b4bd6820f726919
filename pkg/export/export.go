package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format is a downloadable rendering of a table.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts csv or pdf, defaulting to csv when raw is empty.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds a download name such as tutors-20240520.csv.
func (f Format) Filename(base string, at time.Time) string {
	return fmt.Sprintf("%s-%s.%s", base, at.Format("20060102"), string(f))
}

// Table is a rectangular export body.
type Table struct {
	Title       string
	Headers     []string
	Rows        [][]string
	GeneratedAt time.Time
}

// Append adds a row. Rows shorter than the header are padded.
func (t *Table) Append(row []string) {
	if len(row) < len(t.Headers) {
		padded := make([]string, len(t.Headers))
		copy(padded, row)
		row = padded
	}
	t.Rows = append(t.Rows, row[:len(t.Headers)])
}

// Renderer writes a Table in one format.
type Renderer interface {
	Render(w io.Writer, t Table) error
}

// RendererFor returns the renderer for f.
func RendererFor(f Format) Renderer {
	if f == FormatPDF {
		return NewPDFRenderer()
	}
	return NewCSVRenderer()
}
