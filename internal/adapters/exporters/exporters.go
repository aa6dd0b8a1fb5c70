// Package exporters provides implementations for rendering a generated tool
// catalog to reviewable document formats.
package exporters

import (
	"fmt"
	"strings"

	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

// formatParameters returns a formatted parameter list for text-oriented
// exporters.
func formatParameters(params []domain.CatalogParameter) string {
	if len(params) == 0 {
		return "None"
	}

	var result strings.Builder

	for _, p := range params {
		required := ""
		if p.Required {
			required = " (required)"
		}

		paramType := p.Type
		if paramType == "" {
			paramType = "string"
		}

		result.WriteString(fmt.Sprintf("- %s (%s, %s)%s\n", p.Name, p.Origin, paramType, required))
	}

	return result.String()
}

// toolHeading returns the section heading for one tool.
func toolHeading(tool domain.CatalogTool) string {
	return fmt.Sprintf("%s (%s %s)", tool.Name, tool.Method, tool.Path)
}
