// Package invoker reconstructs HTTP requests from flattened tool arguments
// and executes them against the described API.
package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/openapi-mcp/internal/auth"
	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Context carries the per-server invocation settings, read-only after
// startup. Constants always win over agent-supplied argument values.
type Context struct {
	// ServerURL overrides the endpoint's resolved servers when set.
	ServerURL      string
	DefaultHeaders map[string]string

	// BearerToken is an explicit token; it takes precedence over Tokens.
	BearerToken string
	Tokens      auth.TokenProvider

	Constants map[string]string
}

// Result is the normalized outcome of one invocation. HTTP-level failures
// (network errors, non-2xx statuses) are carried here rather than raised;
// only pre-flight validation raises.
type Result struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       any               `json:"body,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Invoker executes endpoint invocations. It holds no per-call state, so one
// Invoker may serve many concurrent invocations.
type Invoker struct {
	client *http.Client
	log    logger.ILogger
}

// New creates an invoker. A nil client gets a default with a 30s timeout.
func New(client *http.Client, log logger.ILogger) *Invoker {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Invoker{client: client, log: log}
}

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Invoke routes each flat argument back to its origin, applies constants and
// auth, performs the HTTP call and returns the normalized result. The flow
// is strictly linear: validate, resolve URL, assemble body, send; any
// validation failure returns before a request is issued.
func (iv *Invoker) Invoke(ctx context.Context, flat *domain.FlatEndpoint, args map[string]any, ictx *Context) (*Result, error) {
	e := flat.Endpoint

	merged := applyConstants(flat, args, ictx.Constants)

	if missing := missingRequired(flat, merged); len(missing) > 0 {
		return nil, &domain.MissingParameterError{Names: missing}
	}

	base := ictx.ServerURL
	if base == "" && len(e.Servers) > 0 {
		base = e.Servers[0]
	}
	if base == "" {
		return nil, domain.ErrNoServerURL
	}

	path := e.Path
	query := url.Values{}
	headerArgs := map[string]string{}
	bodyFields := map[string]any{}
	formOrder := []string{}

	for _, p := range flat.Parameters {
		value, ok := merged[p.Name]
		if !ok {
			continue
		}

		switch p.Origin {
		case domain.OriginPath:
			path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(stringValue(value)))
		case domain.OriginQuery:
			query.Add(p.Name, stringValue(value))
		case domain.OriginHeader:
			headerArgs[p.Name] = stringValue(value)
		case domain.OriginBodyJSON, domain.OriginBodyForm:
			if p.File {
				continue
			}
			bodyFields[p.Name] = value
			formOrder = append(formOrder, p.Name)
		}
	}

	if leftover := placeholderPattern.FindAllStringSubmatch(path, -1); len(leftover) > 0 {
		names := make([]string, len(leftover))
		for i, m := range leftover {
			names[i] = m[1]
		}
		return nil, &domain.MissingParameterError{Names: names}
	}

	fullURL, err := buildURL(base, path, query)
	if err != nil {
		return nil, fmt.Errorf("failed to build request URL: %w", err)
	}

	body, contentType, err := iv.buildBody(e, bodyFields, formOrder)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, e.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if err := iv.setHeaders(ctx, req, e, headerArgs, contentType, ictx); err != nil {
		return nil, err
	}

	iv.log.Infof("Invoking %s %s", e.Method, fullURL)

	resp, err := iv.client.Do(req)
	if err != nil {
		return &Result{Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	return readResult(resp), nil
}

// applyConstants overlays operator constants onto the agent arguments for
// every constant whose name exists in the flat schema.
func applyConstants(flat *domain.FlatEndpoint, args map[string]any, constants map[string]string) map[string]any {
	merged := make(map[string]any, len(args)+len(constants))
	for name, value := range args {
		merged[name] = value
	}
	for name, value := range constants {
		if _, ok := flat.Lookup(name); ok {
			merged[name] = value
		}
	}
	return merged
}

func missingRequired(flat *domain.FlatEndpoint, merged map[string]any) []string {
	var missing []string
	for _, name := range flat.RequiredNames() {
		if _, ok := merged[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// buildURL appends the substituted path to the base URL. A query string
// already carried by the base is kept and merged with the query-origin
// arguments.
func buildURL(base, path string, query url.Values) (string, error) {
	baseQuery := ""
	if i := strings.Index(base, "?"); i >= 0 {
		base, baseQuery = base[:i], base[i+1:]
	}

	parsed, err := url.Parse(strings.TrimRight(base, "/") + path)
	if err != nil {
		return "", err
	}

	merged, err := url.ParseQuery(baseQuery)
	if err != nil {
		return "", err
	}
	for name, values := range query {
		for _, value := range values {
			merged.Add(name, value)
		}
	}
	parsed.RawQuery = merged.Encode()

	return parsed.String(), nil
}

// buildBody assembles the JSON or multipart request body. No body is sent
// when the endpoint declares none, or when it is optional and no body field
// was supplied.
func (iv *Invoker) buildBody(e *domain.Endpoint, fields map[string]any, order []string) (io.Reader, string, error) {
	if e.Body == nil || (len(fields) == 0 && !e.Body.Required) {
		return nil, "", nil
	}

	contentType := ""
	if len(e.Body.ContentTypes) > 0 {
		contentType = e.Body.ContentTypes[0]
	}

	if strings.HasPrefix(contentType, "multipart/form-data") {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for _, name := range order {
			if err := writer.WriteField(name, stringValue(fields[name])); err != nil {
				return nil, "", fmt.Errorf("failed to encode form field %q: %w", name, err)
			}
		}
		if err := writer.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to finalize form body: %w", err)
		}
		return &buf, writer.FormDataContentType(), nil
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	if contentType == "" {
		contentType = "application/json"
	}
	return bytes.NewReader(data), contentType, nil
}

// setHeaders layers default headers, header-origin arguments, bearer auth
// and the content type, in that order.
func (iv *Invoker) setHeaders(ctx context.Context, req *http.Request, e *domain.Endpoint, headerArgs map[string]string, contentType string, ictx *Context) error {
	for name, value := range ictx.DefaultHeaders {
		req.Header.Set(name, value)
	}
	for name, value := range headerArgs {
		req.Header.Set(name, value)
	}

	if e.RequiresBearerAuth {
		token := ictx.BearerToken
		if token == "" && ictx.Tokens != nil {
			obtained, err := ictx.Tokens.Token(ctx)
			if err != nil {
				return fmt.Errorf("failed to obtain bearer token: %w", err)
			}
			token = obtained
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return nil
}

func readResult(resp *http.Response) *Result {
	result := &Result{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string, len(resp.Header)),
	}
	for name := range resp.Header {
		result.Headers[name] = resp.Header.Get(name)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "json") && len(data) > 0 {
		var parsed any
		if err := json.Unmarshal(data, &parsed); err == nil {
			result.Body = parsed
			return result
		}
	}

	result.Body = string(data)
	return result
}

// stringValue renders an argument for a path segment, query value, header
// or form field. Structured values are carried as compact JSON.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		data, _ := json.Marshal(t)
		return string(data)
	default:
		return fmt.Sprintf("%v", t)
	}
}
