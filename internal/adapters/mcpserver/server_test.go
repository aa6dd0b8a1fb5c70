package mcpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/openapi-mcp/internal/adapters/invoker"
	"github.com/GabrielNunesIT/openapi-mcp/internal/adapters/toolgen"
	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

func newTestServer(t *testing.T, serverURL string) *Server {
	t.Helper()

	log := logger.NewConsoleLogger(io.Discard)

	endpoints := []*domain.Endpoint{
		{
			Path:        "/users/{userId}",
			Method:      "GET",
			OperationID: "getUser",
			Summary:     "Fetch one user",
			PathParameters: []domain.Parameter{
				{Name: "userId", Required: true, Schema: domain.Schema{"type": "string"}},
			},
		},
	}

	toolset := toolgen.Build(endpoints, toolgen.Options{}, log)

	return New("test-api", "1.0.0", toolset,
		invoker.New(nil, log), &invoker.Context{ServerURL: serverURL}, log)
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := s.handleCall(name)(context.Background(), request)
	require.NoError(t, err)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleCallSuccess(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "42", "name": "Ada"}`))
	}))
	defer api.Close()

	s := newTestServer(t, api.URL)

	result := callTool(t, s, "getUser", map[string]any{"userId": "42"})
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"statusCode": 200`)
	assert.Contains(t, text, `"name": "Ada"`)
}

func TestHandleCallMissingParameter(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request may reach the API")
		w.WriteHeader(http.StatusOK)
	}))
	defer api.Close()

	s := newTestServer(t, api.URL)

	result := callTool(t, s, "getUser", map[string]any{})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "missing required parameters: userId")
}

func TestHandleCallHTTPErrorIsResult(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer api.Close()

	s := newTestServer(t, api.URL)

	result := callTool(t, s, "getUser", map[string]any{"userId": "42"})
	assert.False(t, result.IsError, "HTTP failures are results, not tool errors")
	assert.Contains(t, resultText(t, result), `"statusCode": 502`)
}

func TestHandleCallUnknownTool(t *testing.T) {
	s := newTestServer(t, "https://api.example.com")

	result := callTool(t, s, "nope", nil)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "tool not found")
}
