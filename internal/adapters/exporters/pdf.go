package exporters

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

const (
	pdfFormat      = "pdf"
	pdfPageWidth   = 190.0
	pdfMarginLeft  = 10.0
	pdfMarginTop   = 10.0
	pdfMarginRight = 10.0
	pdfLineHeight  = 5.0
)

// PDFExporter renders tool catalogs to PDF format.
type PDFExporter struct {
	pdf *gofpdf.Fpdf
}

// NewPDFExporter creates a new PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Format returns the output format name.
func (c *PDFExporter) Format() string {
	return pdfFormat
}

// Export renders the tool catalog to PDF format.
func (c *PDFExporter) Export(catalog *domain.ToolCatalog, output io.Writer) error {
	c.pdf = gofpdf.New("P", "mm", "A4", "")
	c.pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	c.pdf.SetDrawColor(180, 180, 180)

	c.addTitlePage(catalog)
	c.addTools(catalog)

	return c.pdf.Output(output)
}

func (c *PDFExporter) addTitlePage(catalog *domain.ToolCatalog) {
	c.pdf.AddPage()

	c.pdf.SetFont("Arial", "B", 28)
	c.pdf.Ln(40)
	c.pdf.CellFormat(pdfPageWidth, 15, catalog.Title, "", 1, "C", false, 0, "")
	c.pdf.Ln(5)

	c.pdf.SetFont("Arial", "", 14)
	c.pdf.SetTextColor(100, 100, 100)
	if catalog.Version != "" {
		c.pdf.CellFormat(pdfPageWidth, 8, fmt.Sprintf("Version %s", catalog.Version), "", 1, "C", false, 0, "")
	}
	if catalog.ServerURL != "" {
		c.pdf.CellFormat(pdfPageWidth, 8, catalog.ServerURL, "", 1, "C", false, 0, "")
	}
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.Ln(20)

	c.pdf.SetFont("Arial", "", 10)
	c.pdf.SetTextColor(128, 128, 128)
	c.pdf.CellFormat(pdfPageWidth, 6, fmt.Sprintf("Generated tool catalog (%d tools)", len(catalog.Tools)), "", 1, "C", false, 0, "")
	c.pdf.SetTextColor(0, 0, 0)
}

func (c *PDFExporter) addTools(catalog *domain.ToolCatalog) {
	c.pdf.AddPage()

	c.pdf.SetFont("Arial", "B", 20)
	c.pdf.CellFormat(pdfPageWidth, 10, "Tools", "", 1, "", false, 0, "")
	c.pdf.Ln(4)

	for _, tool := range catalog.Tools {
		c.addTool(tool)
	}
}

func (c *PDFExporter) addTool(tool domain.CatalogTool) {
	c.pdf.SetFont("Arial", "B", 12)
	c.pdf.MultiCell(pdfPageWidth, 7, toolHeading(tool), "", "", false)

	c.pdf.SetFont("Arial", "", 10)
	if tool.Description != "" {
		c.pdf.MultiCell(pdfPageWidth, pdfLineHeight, tool.Description, "", "", false)
	}

	var notes []string
	if tool.Deprecated {
		notes = append(notes, "deprecated")
	}
	if tool.Auth {
		notes = append(notes, "requires bearer auth")
	}
	if len(notes) > 0 {
		c.pdf.SetTextColor(128, 128, 128)
		for _, note := range notes {
			c.pdf.CellFormat(pdfPageWidth, pdfLineHeight, note, "", 1, "", false, 0, "")
		}
		c.pdf.SetTextColor(0, 0, 0)
	}

	c.addParameterTable(tool)
	c.pdf.Ln(6)
}

func (c *PDFExporter) addParameterTable(tool domain.CatalogTool) {
	if len(tool.Parameters) == 0 {
		return
	}

	colWidths := []float64{60, 40, 40, 30}
	headers := []string{"Parameter", "Origin", "Type", "Required"}

	c.pdf.SetFont("Arial", "B", 9)
	c.pdf.SetFillColor(240, 240, 240)
	for i, header := range headers {
		c.pdf.CellFormat(colWidths[i], 6, header, "1", 0, "", true, 0, "")
	}
	c.pdf.Ln(-1)

	c.pdf.SetFont("Arial", "", 9)
	for _, p := range tool.Parameters {
		required := ""
		if p.Required {
			required = "yes"
		}

		paramType := p.Type
		if paramType == "" {
			paramType = "string"
		}

		c.pdf.CellFormat(colWidths[0], 6, p.Name, "1", 0, "", false, 0, "")
		c.pdf.CellFormat(colWidths[1], 6, p.Origin, "1", 0, "", false, 0, "")
		c.pdf.CellFormat(colWidths[2], 6, paramType, "1", 0, "", false, 0, "")
		c.pdf.CellFormat(colWidths[3], 6, required, "1", 0, "", false, 0, "")
		c.pdf.Ln(-1)
	}
}
