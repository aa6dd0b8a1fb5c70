package exporters

import (
	"fmt"
	"io"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

const docxFormat = "docx"

// DocxExporter renders tool catalogs to Word (DOCX) format.
type DocxExporter struct{}

// NewDocxExporter creates a new DOCX exporter.
func NewDocxExporter() *DocxExporter {
	return &DocxExporter{}
}

// Format returns the output format name.
func (c *DocxExporter) Format() string {
	return docxFormat
}

// Export renders the tool catalog to DOCX format.
func (c *DocxExporter) Export(catalog *domain.ToolCatalog, output io.Writer) error {
	document, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	c.addTitle(document, catalog)
	c.addTools(document, catalog)

	if err := document.Write(output); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

func (c *DocxExporter) addTitle(document *docx.RootDoc, catalog *domain.ToolCatalog) {
	_, _ = document.AddHeading(catalog.Title, 0) // Level 0 = Title style
	if catalog.Version != "" {
		document.AddParagraph(fmt.Sprintf("Version: %s", catalog.Version))
	}
	if catalog.ServerURL != "" {
		document.AddParagraph(fmt.Sprintf("Server: %s", catalog.ServerURL))
	}
	document.AddParagraph(fmt.Sprintf("Generated tools: %d", len(catalog.Tools)))
	document.AddEmptyParagraph()
}

func (c *DocxExporter) addTools(document *docx.RootDoc, catalog *domain.ToolCatalog) {
	if len(catalog.Tools) == 0 {
		return
	}

	_, _ = document.AddHeading("Tools", 1)

	for _, tool := range catalog.Tools {
		c.addTool(document, tool)
	}
}

func (c *DocxExporter) addTool(document *docx.RootDoc, tool domain.CatalogTool) {
	_, _ = document.AddHeading(toolHeading(tool), 2)

	if tool.Description != "" {
		document.AddParagraph(tool.Description)
	}

	if tool.Deprecated {
		document.AddParagraph("Deprecated.")
	}
	if tool.Auth {
		document.AddParagraph("Requires bearer authentication.")
	}

	if len(tool.Parameters) > 0 {
		_, _ = document.AddHeading("Parameters", 3)

		for _, p := range tool.Parameters {
			required := ""
			if p.Required {
				required = " (required)"
			}

			paramType := p.Type
			if paramType == "" {
				paramType = "string"
			}

			document.AddParagraph(fmt.Sprintf("• %s (%s, %s)%s", p.Name, p.Origin, paramType, required))
		}
	}

	document.AddEmptyParagraph()
}
