// Package document lays out chapter content, scores, and images into a
// paginated PDF report, padding to a target page count when configured.
package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/minseo/saju-reporter/internal/fonts"
)

// Chapter is one titled section of the report body.
type Chapter struct {
	Title string
	Body  string
}

// Document describes everything the assembler lays out for one customer.
type Document struct {
	CustomerName  string
	Encoding      string
	CoverPNG      []byte
	ScoreChartPNG []byte
	Chapters      []Chapter
	TrailingText  string
	// TargetPages pads the document with blank filler pages up to this
	// count. Zero disables padding. Content longer than the target is
	// accepted as-is, never truncated.
	TargetPages int
	// GeneratedAt is embedded as the PDF creation date. The zero value
	// means "now"; fix it for byte-reproducible output.
	GeneratedAt time.Time
}

// Layout constants, in millimeters on A4.
const (
	pageMargin     = 18.0
	titleFontSize  = 19.0
	bodyFontSize   = 11.5
	bodyLineHeight = 6.4
	titleGap       = 10.0
	chartWidthMM   = 150.0
)

// Assembler builds PDF documents with a font handle fixed at construction.
type Assembler struct {
	font *fonts.Font
}

// NewAssembler returns an Assembler embedding the given font. The font is
// loaded once at startup by the caller and must cover the script used by
// chapter titles and bodies; the embedded fallback covers Latin only.
func NewAssembler(font *fonts.Font) *Assembler {
	return &Assembler{font: font}
}

// Assemble lays out the document and returns the PDF bytes along with the
// realized page count (after any filler padding).
func (a *Assembler) Assemble(doc Document) ([]byte, int, error) {
	pdf, family := a.newPDF()
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}
	pdf.SetTitle(doc.CustomerName, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	pageWidth, pageHeight := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	// The cover arrives fully composed (artwork plus customer name).
	if len(doc.CoverPNG) > 0 {
		pdf.AddPage()
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("cover", opts, bytes.NewReader(doc.CoverPNG))
		pdf.ImageOptions("cover", 0, 0, pageWidth, pageHeight, false, opts, 0, "")
	}

	if len(doc.ScoreChartPNG) > 0 {
		pdf.AddPage()
		pdf.SetFont(family, "", titleFontSize)
		pdf.CellFormat(contentWidth, 10, doc.CustomerName, "", 1, "C", false, 0, "")
		if doc.Encoding != "" {
			pdf.SetFont(family, "", bodyFontSize)
			pdf.CellFormat(contentWidth, 8, doc.Encoding, "", 1, "C", false, 0, "")
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("scorechart", opts, bytes.NewReader(doc.ScoreChartPNG))
		x := (pageWidth - chartWidthMM) / 2
		pdf.ImageOptions("scorechart", x, pdf.GetY()+titleGap, chartWidthMM, 0, false, opts, 0, "")
	}

	for _, chapter := range doc.Chapters {
		pdf.AddPage()
		pdf.SetFont(family, "", titleFontSize)
		pdf.MultiCell(contentWidth, 10, chapter.Title, "", "L", false)
		pdf.Ln(titleGap)
		pdf.SetFont(family, "", bodyFontSize)
		pdf.MultiCell(contentWidth, bodyLineHeight, NormalizeBreaks(chapter.Body), "", "L", false)
	}

	if doc.TrailingText != "" {
		pdf.AddPage()
		pdf.SetFont(family, "", bodyFontSize)
		pdf.MultiCell(contentWidth, bodyLineHeight, NormalizeBreaks(doc.TrailingText), "", "L", false)
	}

	// Filler pages each contribute exactly one page. Overflow past the
	// target is accepted.
	for doc.TargetPages > 0 && pdf.PageCount() < doc.TargetPages {
		pdf.AddPage()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), pdf.PageCount(), nil
}

// newPDF creates the PDF context with the report font registered. If the
// font bytes cannot be registered it falls back to the built-in core font so
// assembly never aborts on a font problem.
func (a *Assembler) newPDF() (*fpdf.Fpdf, string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	family := a.font.Name
	pdf.AddUTF8FontFromBytes(family, "", a.font.Data)
	if pdf.Err() {
		pdf = fpdf.New("P", "mm", "A4", "")
		family = "helvetica"
	}
	return pdf, family
}
