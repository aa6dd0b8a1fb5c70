package spec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

const maxSchemaDepth = 10

// Extractor walks a normalized OpenAPI 3 document and produces one Endpoint
// record per (path, method) pair. Malformed parameters are skipped with a
// warning rather than failing the whole spec.
type Extractor struct {
	log logger.ILogger
}

// NewExtractor creates a new endpoint extractor.
func NewExtractor(log logger.ILogger) *Extractor {
	return &Extractor{log: log}
}

// Extract returns the endpoints of the document, ordered by path then by
// method so repeated extraction is stable.
func (x *Extractor) Extract(doc *openapi3.T) []*domain.Endpoint {
	var endpoints []*domain.Endpoint

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for path := range pathMap {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		pathItem := pathMap[path]

		for _, method := range []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE"} {
			op := operationForMethod(pathItem, method)
			if op == nil {
				continue
			}
			endpoints = append(endpoints, x.extractOperation(doc, path, method, pathItem, op))
		}
	}

	x.log.Infof("Extracted %d endpoints", len(endpoints))

	return endpoints
}

func (x *Extractor) extractOperation(doc *openapi3.T, path, method string, pathItem *openapi3.PathItem, op *openapi3.Operation) *domain.Endpoint {
	e := &domain.Endpoint{
		Path:        path,
		Method:      method,
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
		Tags:        op.Tags,
		Servers:     resolveServers(doc, pathItem, op),
	}

	if e.OperationID == "" {
		e.OperationID = synthesizeOperationID(method, path)
	}

	x.extractParameters(e, pathItem, op)
	x.extractRequestBody(e, path, method, op)
	x.extractSecurity(e, doc, op)
	x.extractResponses(e, op)

	return e
}

// extractParameters merges path-item-level parameters with operation-level
// ones; an operation-level parameter with the same (name, in) overrides the
// path-item-level declaration.
func (x *Extractor) extractParameters(e *domain.Endpoint, pathItem *openapi3.PathItem, op *openapi3.Operation) {
	overridden := make(map[[2]string]bool)
	for _, ref := range op.Parameters {
		if ref.Value != nil {
			overridden[[2]string{ref.Value.Name, ref.Value.In}] = true
		}
	}

	merged := make([]*openapi3.Parameter, 0, len(pathItem.Parameters)+len(op.Parameters))
	for _, ref := range pathItem.Parameters {
		if ref.Value == nil || overridden[[2]string{ref.Value.Name, ref.Value.In}] {
			continue
		}
		merged = append(merged, ref.Value)
	}
	for _, ref := range op.Parameters {
		if ref.Value != nil {
			merged = append(merged, ref.Value)
		}
	}

	for _, p := range merged {
		if p.Name == "" || p.In == "" {
			x.log.Warningf("Skipping malformed parameter for %s %s: missing name or in", e.Method, e.Path)
			continue
		}

		param := domain.Parameter{
			Name:        p.Name,
			In:          p.In,
			Description: p.Description,
			Required:    p.Required,
			Schema:      schemaToMap(p.Schema, 0),
		}

		switch p.In {
		case openapi3.ParameterInPath:
			// Path parameters are always required.
			param.Required = true
			e.PathParameters = append(e.PathParameters, param)
		case openapi3.ParameterInQuery:
			e.QueryParameters = append(e.QueryParameters, param)
		case openapi3.ParameterInHeader:
			e.HeaderParameters = append(e.HeaderParameters, param)
		case openapi3.ParameterInCookie:
			x.log.Warningf("Ignoring cookie parameter %q for %s %s: not supported", p.Name, e.Method, e.Path)
		default:
			x.log.Warningf("Skipping parameter %q for %s %s: unknown location %q", p.Name, e.Method, e.Path, p.In)
		}
	}
}

// extractRequestBody prefers an application/json schema, falling back to the
// first multipart/form-data schema, and records every declared content type
// with the selected one first.
func (x *Extractor) extractRequestBody(e *domain.Endpoint, path, method string, op *openapi3.Operation) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return
	}

	content := op.RequestBody.Value.Content
	if len(content) == 0 {
		return
	}

	contentTypes := make([]string, 0, len(content))
	for ct := range content {
		contentTypes = append(contentTypes, ct)
	}
	sort.Strings(contentTypes)

	selected := ""
	if mt, ok := content["application/json"]; ok && mt.Schema != nil {
		selected = "application/json"
	} else {
		for _, ct := range contentTypes {
			if strings.HasPrefix(ct, "multipart/form-data") && content[ct].Schema != nil {
				selected = ct
				break
			}
		}
	}
	if selected == "" {
		x.log.Warningf("Skipping request body for %s %s: no JSON or multipart content", method, path)
		return
	}

	ordered := []string{selected}
	for _, ct := range contentTypes {
		if ct != selected {
			ordered = append(ordered, ct)
		}
	}

	e.Body = &domain.RequestBody{
		Schema:       schemaToMap(content[selected].Schema, 0),
		Required:     op.RequestBody.Value.Required,
		ContentTypes: ordered,
	}
}

// extractSecurity computes the effective requirement list: the operation
// level wins when declared, even when empty, which explicitly disables auth
// for that operation.
func (x *Extractor) extractSecurity(e *domain.Endpoint, doc *openapi3.T, op *openapi3.Operation) {
	var requirements openapi3.SecurityRequirements
	if op.Security != nil {
		requirements = *op.Security
	} else {
		requirements = doc.Security
	}

	for _, req := range requirements {
		converted := make(domain.SecurityRequirement, len(req))
		for name, scopes := range req {
			converted[name] = scopes
		}
		e.SecurityRequirements = append(e.SecurityRequirements, converted)
	}

	e.RequiresBearerAuth = requiresBearerAuth(doc, requirements)
}

func (x *Extractor) extractResponses(e *domain.Endpoint, op *openapi3.Operation) {
	if op.Responses == nil || op.Responses.Len() == 0 {
		return
	}

	e.Responses = make(map[string]domain.Response, op.Responses.Len())
	for status, ref := range op.Responses.Map() {
		if ref == nil || ref.Value == nil {
			continue
		}

		resp := domain.Response{}
		if ref.Value.Description != nil {
			resp.Description = *ref.Value.Description
		}
		if len(ref.Value.Content) > 0 {
			resp.Content = make(map[string]domain.Schema, len(ref.Value.Content))
			for ct, mt := range ref.Value.Content {
				resp.Content[ct] = schemaToMap(mt.Schema, 0)
			}
		}
		e.Responses[status] = resp
	}
}

// requiresBearerAuth reports whether any scheme referenced by the
// requirements resolves to http/bearer or oauth2.
func requiresBearerAuth(doc *openapi3.T, requirements openapi3.SecurityRequirements) bool {
	if len(requirements) == 0 || doc.Components == nil {
		return false
	}

	for _, req := range requirements {
		for name := range req {
			ref, ok := doc.Components.SecuritySchemes[name]
			if !ok || ref.Value == nil {
				continue
			}
			scheme := ref.Value
			if scheme.Type == "http" && strings.EqualFold(scheme.Scheme, "bearer") {
				return true
			}
			if scheme.Type == "oauth2" {
				return true
			}
		}
	}

	return false
}

// resolveServers applies the precedence operation > path item > spec root.
func resolveServers(doc *openapi3.T, pathItem *openapi3.PathItem, op *openapi3.Operation) []string {
	var servers openapi3.Servers
	switch {
	case op.Servers != nil && len(*op.Servers) > 0:
		servers = *op.Servers
	case len(pathItem.Servers) > 0:
		servers = pathItem.Servers
	default:
		servers = doc.Servers
	}

	urls := make([]string, 0, len(servers))
	for _, s := range servers {
		if s != nil && s.URL != "" {
			urls = append(urls, s.URL)
		}
	}
	return urls
}

// synthesizeOperationID derives a stable identifier from method and path,
// e.g. GET /users/{userId} -> get_users_userId.
func synthesizeOperationID(method, path string) string {
	slug := strings.ReplaceAll(path, "/", "_")
	slug = strings.ReplaceAll(slug, "{", "")
	slug = strings.ReplaceAll(slug, "}", "")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "root"
	}
	return fmt.Sprintf("%s_%s", strings.ToLower(method), slug)
}

func operationForMethod(pathItem *openapi3.PathItem, method string) *openapi3.Operation {
	switch method {
	case "GET":
		return pathItem.Get
	case "POST":
		return pathItem.Post
	case "PUT":
		return pathItem.Put
	case "DELETE":
		return pathItem.Delete
	case "PATCH":
		return pathItem.Patch
	case "HEAD":
		return pathItem.Head
	case "OPTIONS":
		return pathItem.Options
	case "TRACE":
		return pathItem.Trace
	default:
		return nil
	}
}

// schemaToMap renders a schema reference as a raw JSON-schema fragment,
// keeping type, format, enum, default, required, properties and items.
// Nested references beyond the depth limit stay as $ref fragments; full
// recursive resolution is out of scope.
func schemaToMap(ref *openapi3.SchemaRef, depth int) domain.Schema {
	if ref == nil {
		return nil
	}
	if ref.Value == nil || depth > maxSchemaDepth {
		if ref.Ref != "" {
			return domain.Schema{"$ref": ref.Ref}
		}
		return nil
	}

	s := ref.Value
	out := domain.Schema{}

	if s.Type != nil {
		if types := s.Type.Slice(); len(types) > 0 {
			out["type"] = types[0]
		}
	}
	if s.Format != "" {
		out["format"] = s.Format
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Default != nil {
		out["default"] = s.Default
	}
	if len(s.Required) > 0 {
		required := make([]any, len(s.Required))
		for i, name := range s.Required {
			required[i] = name
		}
		out["required"] = required
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			if converted := schemaToMap(prop, depth+1); converted != nil {
				props[name] = map[string]any(converted)
			}
		}
		out["properties"] = props
	}
	if s.Items != nil {
		if items := schemaToMap(s.Items, depth+1); items != nil {
			out["items"] = map[string]any(items)
		}
	}

	return out
}
