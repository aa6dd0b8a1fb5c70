// Package toolgen turns extracted endpoints into the flattened tool set
// served to the agent protocol layer.
package toolgen

import (
	"fmt"
	"regexp"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

// Options controls which endpoints become tools.
type Options struct {
	// IncludePattern keeps only endpoints whose raw path matches; nil keeps
	// everything. ExcludePattern then removes matching paths.
	IncludePattern *regexp.Regexp
	ExcludePattern *regexp.Regexp
}

// Toolset is the read-only tool cache built once at startup: every kept
// endpoint with its flattened schema, addressable by tool name. names runs
// parallel to flats and carries the final, collision-free tool names.
type Toolset struct {
	flats  []*domain.FlatEndpoint
	names  []string
	byName map[string]*domain.FlatEndpoint
}

// Build filters the endpoints, flattens each survivor and indexes the result
// by sanitized operation ID. Flattening collisions are logged so spec
// authors can detect ambiguous parameter names. Two operation IDs that
// sanitize to the same tool name get a numeric suffix, with a warning, so
// no tool silently shadows another.
func Build(endpoints []*domain.Endpoint, opts Options, log logger.ILogger) *Toolset {
	ts := &Toolset{byName: make(map[string]*domain.FlatEndpoint)}

	for _, e := range endpoints {
		if opts.IncludePattern != nil && !opts.IncludePattern.MatchString(e.Path) {
			continue
		}
		if opts.ExcludePattern != nil && opts.ExcludePattern.MatchString(e.Path) {
			continue
		}

		flat := domain.Flatten(e)
		for _, collision := range flat.Collisions {
			log.Warningf("%s %s: %s", e.Method, e.Path, collision)
		}

		name := SanitizeToolName(e.OperationID)
		if _, taken := ts.byName[name]; taken {
			base := name
			for i := 2; ; i++ {
				name = fmt.Sprintf("%s_%d", base, i)
				if _, taken := ts.byName[name]; !taken {
					break
				}
			}
			log.Warningf("%s %s: tool name %q already taken, using %q", e.Method, e.Path, base, name)
		}

		ts.flats = append(ts.flats, flat)
		ts.names = append(ts.names, name)
		ts.byName[name] = flat
	}

	log.Infof("Generated tool set with %d tools", len(ts.flats))

	return ts
}

// All returns the flattened endpoints in listing order.
func (ts *Toolset) All() []*domain.FlatEndpoint {
	return ts.flats
}

// Lookup finds a flattened endpoint by tool name.
func (ts *Toolset) Lookup(name string) (*domain.FlatEndpoint, bool) {
	flat, ok := ts.byName[name]
	return flat, ok
}

// Len returns the number of generated tools.
func (ts *Toolset) Len() int {
	return len(ts.flats)
}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeToolName replaces characters that are not valid in a tool
// identifier with underscores.
func SanitizeToolName(name string) string {
	return invalidNameChars.ReplaceAllString(name, "_")
}
