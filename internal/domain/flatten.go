package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Origin tells the invoker where a flattened parameter value must be routed
// when the HTTP request is reassembled.
type Origin string

const (
	OriginPath     Origin = "path"
	OriginQuery    Origin = "query"
	OriginHeader   Origin = "header"
	OriginBodyJSON Origin = "body-json-field"
	OriginBodyForm Origin = "body-form-field"
)

// FlatParameter is one entry of a flattened endpoint schema.
type FlatParameter struct {
	Name     string
	Origin   Origin
	Required bool
	Schema   Schema

	// File marks multipart fields carrying file content. They stay in the
	// flat schema for bookkeeping but are hidden from the agent and never
	// populated by the invoker.
	File bool
}

// FlatEndpoint merges an Endpoint's parameters and top-level body properties
// into one ordered, origin-tagged schema. Flattening is a pure function of
// the Endpoint: path, query and header parameters keep declaration order,
// body fields are ordered lexicographically, and repeated calls yield an
// identical result.
type FlatEndpoint struct {
	Endpoint   *Endpoint
	Parameters []FlatParameter

	// Collisions records one message per name that was claimed by more than
	// one origin, resolved by the precedence path > query > header > body.
	Collisions []string

	index map[string]int
}

// Flatten builds the flat schema for an endpoint.
func Flatten(e *Endpoint) *FlatEndpoint {
	fe := &FlatEndpoint{
		Endpoint: e,
		index:    make(map[string]int),
	}

	for _, p := range e.PathParameters {
		fe.add(FlatParameter{Name: p.Name, Origin: OriginPath, Required: p.Required, Schema: p.Schema})
	}
	for _, p := range e.QueryParameters {
		fe.add(FlatParameter{Name: p.Name, Origin: OriginQuery, Required: p.Required, Schema: p.Schema})
	}
	for _, p := range e.HeaderParameters {
		fe.add(FlatParameter{Name: p.Name, Origin: OriginHeader, Required: p.Required, Schema: p.Schema})
	}

	fe.addBodyFields()

	return fe
}

func (fe *FlatEndpoint) addBodyFields() {
	body := fe.Endpoint.Body
	if body == nil || body.Schema == nil {
		return
	}

	origin := OriginBodyJSON
	if len(body.ContentTypes) > 0 && strings.HasPrefix(body.ContentTypes[0], "multipart/form-data") {
		origin = OriginBodyForm
	}

	props, _ := body.Schema["properties"].(map[string]any)
	if len(props) == 0 {
		return
	}

	requiredNames := make(map[string]bool)
	if raw, ok := body.Schema["required"].([]any); ok {
		for _, name := range raw {
			if s, ok := name.(string); ok {
				requiredNames[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		schema, _ := props[name].(map[string]any)

		fe.add(FlatParameter{
			Name:   name,
			Origin: origin,
			// A body field is required only when the body itself is.
			Required: body.Required && requiredNames[name],
			Schema:   Schema(schema),
			File:     isFileSchema(schema),
		})
	}
}

// add appends a parameter, applying the collision policy: an earlier origin
// always wins over a later one, and a duplicate name within the body origin
// is resolved last-declared-wins, keeping the original position.
func (fe *FlatEndpoint) add(p FlatParameter) {
	if i, ok := fe.index[p.Name]; ok {
		existing := fe.Parameters[i]
		if existing.Origin == p.Origin {
			fe.Collisions = append(fe.Collisions, fmt.Sprintf(
				"parameter %q declared twice in %s, keeping the last definition", p.Name, p.Origin))
			fe.Parameters[i] = p
		} else {
			fe.Collisions = append(fe.Collisions, fmt.Sprintf(
				"parameter %q declared in both %s and %s, %s wins", p.Name, existing.Origin, p.Origin, existing.Origin))
		}
		return
	}

	fe.index[p.Name] = len(fe.Parameters)
	fe.Parameters = append(fe.Parameters, p)
}

// Lookup returns the flat parameter with the given name.
func (fe *FlatEndpoint) Lookup(name string) (FlatParameter, bool) {
	i, ok := fe.index[name]
	if !ok {
		return FlatParameter{}, false
	}
	return fe.Parameters[i], true
}

// RequiredNames returns the names of all required, non-file parameters in
// schema order.
func (fe *FlatEndpoint) RequiredNames() []string {
	var names []string
	for _, p := range fe.Parameters {
		if p.Required && !p.File {
			names = append(names, p.Name)
		}
	}
	return names
}

func isFileSchema(schema map[string]any) bool {
	t, _ := schema["type"].(string)
	if t == "file" {
		return true
	}
	format, _ := schema["format"].(string)
	return t == "string" && format == "binary"
}
