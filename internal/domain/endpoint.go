// Package domain provides the core models for the OpenAPI tool bridge:
// extracted endpoints, their flattened parameter schemas, and the tool
// descriptors served to the agent protocol layer.
package domain

// Schema is a raw JSON-schema fragment as found in the specification
// (type, format, enum, default, properties, items, ...). Fragments are
// carried as-is; nested structures are not resolved further.
type Schema map[string]any

// Parameter describes one path, query or header parameter of an operation.
type Parameter struct {
	Name        string
	In          string // path, query, header
	Description string
	Required    bool
	Schema      Schema
}

// RequestBody describes the request body of an operation. Schema is the
// schema of the preferred content type (JSON over multipart); ContentTypes
// lists every declared content type, preferred one first.
type RequestBody struct {
	Schema       Schema
	Required     bool
	ContentTypes []string
}

// Response holds per-status response metadata. It is documentation only;
// nothing is enforced against it at invocation time.
type Response struct {
	Description string
	Content     map[string]Schema
}

// SecurityRequirement maps a security scheme name to its requested scopes.
type SecurityRequirement map[string][]string

// Endpoint is one (path, method) operation extracted from a specification.
// Endpoints are built once per spec load and never mutated afterwards.
type Endpoint struct {
	Path        string // template form, e.g. /users/{userId}
	Method      string // uppercase HTTP verb
	OperationID string

	Summary     string
	Description string
	Deprecated  bool
	Tags        []string

	PathParameters   []Parameter
	QueryParameters  []Parameter
	HeaderParameters []Parameter
	Body             *RequestBody

	// SecurityRequirements is the effective requirement list: the
	// operation-level list when declared (an explicit empty list disables
	// auth), otherwise the spec-level default.
	SecurityRequirements []SecurityRequirement
	RequiresBearerAuth   bool

	// Servers lists the applicable base URLs, operation level overriding
	// path level overriding spec level.
	Servers []string

	Responses map[string]Response
}

// Key returns the unique identity of the endpoint within its spec.
func (e *Endpoint) Key() string {
	return e.Method + " " + e.Path
}
