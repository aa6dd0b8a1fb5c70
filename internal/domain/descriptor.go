package domain

import "encoding/json"

// ToolDescriptor is the protocol-facing representation of a FlatEndpoint:
// a tool name, a human description and a JSON-schema object describing the
// flat arguments. Descriptors are regenerated from the cached FlatEndpoints
// on every listing; rebuilding with an unchanged endpoint set yields
// byte-identical schemas.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ToolCatalog is the exportable view of a generated tool set, consumed by
// the catalog exporters and the list command.
type ToolCatalog struct {
	Title     string        `json:"title"`
	Version   string        `json:"version,omitempty"`
	ServerURL string        `json:"serverUrl,omitempty"`
	Tools     []CatalogTool `json:"tools"`
}

// CatalogTool pairs a descriptor with the endpoint facts an operator needs
// to review the generated tool.
type CatalogTool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Method      string             `json:"method"`
	Path        string             `json:"path"`
	Deprecated  bool               `json:"deprecated,omitempty"`
	Auth        bool               `json:"requiresBearerAuth,omitempty"`
	Parameters  []CatalogParameter `json:"parameters,omitempty"`
}

// CatalogParameter is the exportable view of one flattened parameter.
type CatalogParameter struct {
	Name     string `json:"name"`
	Origin   string `json:"origin"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required,omitempty"`
}
