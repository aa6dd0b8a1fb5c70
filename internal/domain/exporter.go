package domain

import "io"

// Exporter defines the interface for tool-catalog exporters.
type Exporter interface {
	// Export renders the tool catalog to the target format.
	Export(catalog *ToolCatalog, output io.Writer) error

	// Format returns the output format name (e.g., "pdf", "docx").
	Format() string
}
