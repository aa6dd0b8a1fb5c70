package toolgen

import (
	"encoding/json"
	"fmt"

	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

// Descriptors renders the protocol-facing tool descriptors from the cached
// flat endpoints. Deprecated endpoints are kept in the tool set for lookup
// but omitted from the listing. encoding/json sorts map keys, so repeated
// calls over an unchanged tool set produce byte-identical schemas.
func (ts *Toolset) Descriptors() []domain.ToolDescriptor {
	descriptors := make([]domain.ToolDescriptor, 0, len(ts.flats))

	for i, flat := range ts.flats {
		if flat.Endpoint.Deprecated {
			continue
		}
		descriptors = append(descriptors, describe(ts.names[i], flat))
	}

	return descriptors
}

func describe(name string, flat *domain.FlatEndpoint) domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        name,
		Description: describeEndpoint(flat.Endpoint),
		InputSchema: inputSchema(flat),
	}
}

func describeEndpoint(e *domain.Endpoint) string {
	if e.Summary != "" {
		return e.Summary
	}
	if e.Description != "" {
		return e.Description
	}
	return fmt.Sprintf("%s %s", e.Method, e.Path)
}

// inputSchema renders {type: object, properties, required} from the flat
// parameters, excluding file fields, which cannot be supplied as textual
// tool arguments.
func inputSchema(flat *domain.FlatEndpoint) json.RawMessage {
	properties := make(map[string]any, len(flat.Parameters))
	for _, p := range flat.Parameters {
		if p.File {
			continue
		}
		schema := p.Schema
		if schema == nil {
			schema = domain.Schema{"type": "string"}
		}
		properties[p.Name] = map[string]any(schema)
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if required := flat.RequiredNames(); len(required) > 0 {
		schema["required"] = required
	}

	// Marshaling a map of plain JSON values cannot fail.
	data, _ := json.Marshal(schema)
	return data
}

// Catalog builds the exportable view of the tool set for the list and
// export commands.
func (ts *Toolset) Catalog(title, version, serverURL string) *domain.ToolCatalog {
	catalog := &domain.ToolCatalog{
		Title:     title,
		Version:   version,
		ServerURL: serverURL,
		Tools:     make([]domain.CatalogTool, 0, len(ts.flats)),
	}

	for i, flat := range ts.flats {
		e := flat.Endpoint

		tool := domain.CatalogTool{
			Name:        ts.names[i],
			Description: describeEndpoint(e),
			Method:      e.Method,
			Path:        e.Path,
			Deprecated:  e.Deprecated,
			Auth:        e.RequiresBearerAuth,
		}

		for _, p := range flat.Parameters {
			if p.File {
				continue
			}
			paramType, _ := p.Schema["type"].(string)
			tool.Parameters = append(tool.Parameters, domain.CatalogParameter{
				Name:     p.Name,
				Origin:   string(p.Origin),
				Type:     paramType,
				Required: p.Required,
			})
		}

		catalog.Tools = append(catalog.Tools, tool)
	}

	return catalog
}
