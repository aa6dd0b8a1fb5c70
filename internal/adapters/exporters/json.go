package exporters

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

const jsonFormat = "json"

// JSONExporter renders tool catalogs as indented JSON, the machine-readable
// counterpart of the PDF and DOCX exports.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format returns the output format name.
func (c *JSONExporter) Format() string {
	return jsonFormat
}

// Export renders the tool catalog to JSON format.
func (c *JSONExporter) Export(catalog *domain.ToolCatalog, output io.Writer) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(catalog); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	return nil
}
