// Package render turns an assembled report document into PDF bytes.
package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"sellerprep-backend-go/internal/models"
)

// Renderer is the outbound interface for PDF generation. The report
// assembler produces the document model; the renderer only lays it out.
type Renderer interface {
	RenderReport(doc *models.ReportDocument) ([]byte, error)
}

// pdfRenderer implements Renderer with fpdf.
type pdfRenderer struct{}

// NewPDFRenderer creates the fpdf-backed Renderer.
func NewPDFRenderer() Renderer {
	return &pdfRenderer{}
}

// RenderReport lays out the report: a title page with the property header and
// summary counts, then one block per section with its documents, images and
// notes in assembled order.
func (r *pdfRenderer) RenderReport(doc *models.ReportDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("report document cannot be nil")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Property Report - %s", doc.PropertyAddress), false)
	pdf.AddPage()

	// Title block
	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 10, "Property Report", "", "C", false)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, doc.PropertyAddress, "", "C", false)
	if doc.PropertyDescription != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, doc.PropertyDescription, "", "C", false)
	}
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 6, fmt.Sprintf("Generated on %s", doc.GeneratedAt), "", "C", false)
	pdf.Ln(4)

	// Summary counts
	pdf.SetFont("Helvetica", "", 10)
	summary := fmt.Sprintf("%d sections - %d documents - %d images - %d notes",
		doc.TotalSections, doc.TotalDocuments, doc.TotalImages, doc.TotalNotes)
	pdf.MultiCell(0, 6, summary, "", "C", false)
	pdf.Ln(6)

	for _, section := range doc.Sections {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 8, section.Title, "", "L", false)

		r.renderItemList(pdf, "Documents", section.Documents)
		r.renderItemList(pdf, "Images", section.Images)
		r.renderNotes(pdf, section.Notes)

		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf generation failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfRenderer) renderItemList(pdf *fpdf.Fpdf, heading string, items []models.ReportItem) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.MultiCell(0, 6, heading, "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		line := fmt.Sprintf("- %s (%s)", item.DisplayName, item.Date)
		pdf.MultiCell(0, 5, line, "", "L", false)
		if item.URL != "" {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.MultiCell(0, 4, item.URL, "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
		}
	}
	pdf.Ln(2)
}

func (r *pdfRenderer) renderNotes(pdf *fpdf.Fpdf, notes []models.ReportItem) {
	if len(notes) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.MultiCell(0, 6, "Notes", "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	for _, note := range notes {
		pdf.MultiCell(0, 5, fmt.Sprintf("%s:", note.Date), "", "L", false)
		pdf.MultiCell(0, 5, note.Content, "", "L", false)
		pdf.Ln(1)
	}
	pdf.Ln(2)
}
