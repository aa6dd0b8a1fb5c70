// Package spec loads OpenAPI specifications and extracts endpoint records
// from them. Swagger 2.0 input is structurally upgraded on load so the
// extractor only ever sees the OpenAPI 3 object model.
package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// LoadError indicates the source could not be read or parsed as JSON/YAML.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load specification: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FormatError indicates the parsed content is not a usable specification.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid specification: %s", e.Reason)
}

// Loader turns a spec source into a normalized OpenAPI 3 document.
type Loader struct {
	log    logger.ILogger
	client *http.Client
}

// NewLoader creates a new spec loader.
func NewLoader(log logger.ILogger) *Loader {
	return &Loader{
		log:    log,
		client: http.DefaultClient,
	}
}

// Load accepts a filesystem path, a URL, raw JSON text, raw YAML text, or an
// in-memory mapping, and returns the normalized OpenAPI 3 document.
func (l *Loader) Load(source any) (*openapi3.T, error) {
	switch src := source.(type) {
	case map[string]any:
		data, err := json.Marshal(src)
		if err != nil {
			return nil, &LoadError{Err: err}
		}
		return l.loadData(data)
	case string:
		return l.loadString(src)
	default:
		return nil, &LoadError{Err: fmt.Errorf("unsupported source type %T", source)}
	}
}

func (l *Loader) loadString(source string) (*openapi3.T, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		l.log.Infof("Fetching specification from URL: %s", source)
		return l.loadURL(source)
	}

	if hasSpecExtension(source) {
		if _, err := os.Stat(source); err == nil {
			data, err := os.ReadFile(source)
			if err != nil {
				return nil, &LoadError{Err: err}
			}
			return l.loadData(data)
		}
	}

	// Raw JSON or YAML text.
	return l.loadData([]byte(source))
}

func (l *Loader) loadURL(source string) (*openapi3.T, error) {
	resp, err := l.client.Get(source)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{Err: fmt.Errorf("fetching %s: HTTP %d", source, resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{Err: err}
	}

	return l.loadData(data)
}

func (l *Loader) loadData(data []byte) (*openapi3.T, error) {
	var probe struct {
		OpenAPI string `json:"openapi" yaml:"openapi"`
		Swagger string `json:"swagger" yaml:"swagger"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("content is not valid JSON or YAML: %w", err)}
	}

	var (
		doc *openapi3.T
		err error
	)
	if strings.HasPrefix(probe.Swagger, "2") {
		l.log.Infof("Upgrading Swagger %s specification to OpenAPI 3", probe.Swagger)
		doc, err = l.upgradeV2(data)
	} else {
		loader := openapi3.NewLoader()
		loader.IsExternalRefsAllowed = true
		doc, err = loader.LoadFromData(data)
	}
	if err != nil {
		return nil, &LoadError{Err: err}
	}

	if doc.Paths == nil {
		return nil, &FormatError{Reason: "specification has no paths object"}
	}

	return doc, nil
}

// upgradeV2 maps a Swagger 2.0 document onto the OpenAPI 3 object model:
// definitions become component schemas, body and formData parameters become
// request bodies, securityDefinitions become security schemes.
func (l *Loader) upgradeV2(data []byte) (*openapi3.T, error) {
	// openapi2 only unmarshals JSON, so YAML input goes through a generic
	// mapping first.
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		var err error
		data, err = json.Marshal(raw)
		if err != nil {
			return nil, err
		}
	}

	var doc2 openapi2.T
	if err := json.Unmarshal(data, &doc2); err != nil {
		return nil, err
	}

	return openapi2conv.ToV3(&doc2)
}

func hasSpecExtension(path string) bool {
	return strings.HasSuffix(path, ".json") ||
		strings.HasSuffix(path, ".yaml") ||
		strings.HasSuffix(path, ".yml")
}
