package spec

import (
	"io"
	"testing"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

func extractFromYAML(t *testing.T, text string) []*domain.Endpoint {
	t.Helper()

	doc, err := newTestLoader().Load(text)
	require.NoError(t, err)

	return NewExtractor(logger.NewConsoleLogger(io.Discard)).Extract(doc)
}

func endpointByKey(t *testing.T, endpoints []*domain.Endpoint, key string) *domain.Endpoint {
	t.Helper()

	for _, e := range endpoints {
		if e.Key() == key {
			return e
		}
	}
	t.Fatalf("no endpoint %q", key)
	return nil
}

func TestExtractOnePerPathMethod(t *testing.T) {
	endpoints := extractFromYAML(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths:
  /users:
    get:
      responses: {"200": {description: ok}}
    post:
      responses: {"201": {description: created}}
  /users/{userId}:
    get:
      parameters:
        - name: userId
          in: path
          required: true
          schema: {type: string}
      responses: {"200": {description: ok}}
`)

	require.Len(t, endpoints, 3)

	seen := make(map[string]bool)
	for _, e := range endpoints {
		assert.False(t, seen[e.Key()], "duplicate endpoint %s", e.Key())
		seen[e.Key()] = true
	}
}

func TestExtractParameterMergeAndOverride(t *testing.T) {
	endpoints := extractFromYAML(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths:
  /projects/{projectId}/tasks:
    parameters:
      - name: projectId
        in: path
        required: true
        schema: {type: string}
      - name: limit
        in: query
        schema: {type: integer, default: 10}
    get:
      parameters:
        - name: limit
          in: query
          required: true
          schema: {type: integer, default: 50}
        - name: offset
          in: query
          schema: {type: integer}
      responses: {"200": {description: ok}}
`)

	e := endpointByKey(t, endpoints, "GET /projects/{projectId}/tasks")

	require.Len(t, e.PathParameters, 1)
	assert.Equal(t, "projectId", e.PathParameters[0].Name)
	assert.True(t, e.PathParameters[0].Required)

	// The operation-level limit replaces the path-item-level one.
	require.Len(t, e.QueryParameters, 2)
	assert.Equal(t, "limit", e.QueryParameters[0].Name)
	assert.True(t, e.QueryParameters[0].Required)
	assert.EqualValues(t, 50, e.QueryParameters[0].Schema["default"])
	assert.Equal(t, "offset", e.QueryParameters[1].Name)
}

func TestExtractPathParameterAlwaysRequired(t *testing.T) {
	endpoints := extractFromYAML(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths:
  /things/{id}:
    get:
      parameters:
        - name: id
          in: path
          required: true
          schema: {type: string}
        - name: X-Trace
          in: header
          schema: {type: string}
      responses: {"200": {description: ok}}
`)

	e := endpointByKey(t, endpoints, "GET /things/{id}")
	require.Len(t, e.PathParameters, 1)
	assert.True(t, e.PathParameters[0].Required)

	require.Len(t, e.HeaderParameters, 1)
	assert.Equal(t, "X-Trace", e.HeaderParameters[0].Name)
	assert.False(t, e.HeaderParameters[0].Required)
}

func TestExtractSkipsMalformedAndCookieParameters(t *testing.T) {
	endpoints := extractFromYAML(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths:
  /session:
    get:
      parameters:
        - in: query
          schema: {type: string}
        - name: sessionId
          in: cookie
          schema: {type: string}
        - name: verbose
          in: query
          schema: {type: boolean}
      responses: {"200": {description: ok}}
`)

	// A nameless parameter and a cookie parameter are dropped, the rest of
	// the operation survives.
	e := endpointByKey(t, endpoints, "GET /session")
	assert.Empty(t, e.PathParameters)
	assert.Empty(t, e.HeaderParameters)
	require.Len(t, e.QueryParameters, 1)
	assert.Equal(t, "verbose", e.QueryParameters[0].Name)
}

func TestExtractRequestBodyPrefersJSON(t *testing.T) {
	endpoints := extractFromYAML(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths:
  /documents:
    post:
      requestBody:
        required: true
        content:
          multipart/form-data:
            schema:
              type: object
              properties:
                file: {type: string, format: binary}
          application/json:
            schema:
              type: object
              properties:
                title: {type: string}
      responses: {"201": {description: created}}
`)

	e := endpointByKey(t, endpoints, "POST /documents")
	require.NotNil(t, e.Body)
	assert.True(t, e.Body.Required)
	assert.Equal(t, []string{"application/json", "multipart/form-data"}, e.Body.ContentTypes)

	props, ok := e.Body.Schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "title")
	assert.NotContains(t, props, "file")
}

func TestExtractRequestBodyMultipartFallback(t *testing.T) {
	endpoints := extractFromYAML(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths:
  /uploads:
    post:
      requestBody:
        content:
          multipart/form-data:
            schema:
              type: object
              properties:
                file: {type: string, format: binary}
                label: {type: string}
      responses: {"201": {description: created}}
`)

	e := endpointByKey(t, endpoints, "POST /uploads")
	require.NotNil(t, e.Body)
	assert.Equal(t, "multipart/form-data", e.Body.ContentTypes[0])
}

const securedSpec = `
openapi: 3.0.0
info: {title: T, version: "1"}
security:
  - bearerAuth: []
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
    apiKeyAuth:
      type: apiKey
      in: header
      name: X-API-Key
paths:
  /private:
    get:
      responses: {"200": {description: ok}}
  /public:
    get:
      security: []
      responses: {"200": {description: ok}}
  /keyed:
    get:
      security:
        - apiKeyAuth: []
      responses: {"200": {description: ok}}
`

func TestExtractSecurityInheritance(t *testing.T) {
	endpoints := extractFromYAML(t, securedSpec)

	private := endpointByKey(t, endpoints, "GET /private")
	require.Len(t, private.SecurityRequirements, 1)
	assert.Contains(t, private.SecurityRequirements[0], "bearerAuth")
	assert.True(t, private.RequiresBearerAuth)

	// An explicit empty list disables the spec-level requirement.
	public := endpointByKey(t, endpoints, "GET /public")
	assert.Empty(t, public.SecurityRequirements)
	assert.False(t, public.RequiresBearerAuth)

	keyed := endpointByKey(t, endpoints, "GET /keyed")
	require.Len(t, keyed.SecurityRequirements, 1)
	assert.False(t, keyed.RequiresBearerAuth)
}

func TestExtractServerPrecedence(t *testing.T) {
	endpoints := extractFromYAML(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
servers:
  - url: https://global.example.com
paths:
  /a:
    get:
      responses: {"200": {description: ok}}
  /b:
    servers:
      - url: https://path.example.com
    get:
      responses: {"200": {description: ok}}
  /c:
    servers:
      - url: https://path.example.com
    get:
      servers:
        - url: https://op.example.com
      responses: {"200": {description: ok}}
`)

	assert.Equal(t, []string{"https://global.example.com"}, endpointByKey(t, endpoints, "GET /a").Servers)
	assert.Equal(t, []string{"https://path.example.com"}, endpointByKey(t, endpoints, "GET /b").Servers)
	assert.Equal(t, []string{"https://op.example.com"}, endpointByKey(t, endpoints, "GET /c").Servers)
}

func TestExtractOperationIDSynthesis(t *testing.T) {
	endpoints := extractFromYAML(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths:
  /users/{userId}/posts:
    get:
      responses: {"200": {description: ok}}
  /:
    get:
      responses: {"200": {description: ok}}
  /named:
    get:
      operationId: listNamed
      responses: {"200": {description: ok}}
`)

	assert.Equal(t, "get_users_userId_posts", endpointByKey(t, endpoints, "GET /users/{userId}/posts").OperationID)
	assert.Equal(t, "get_root", endpointByKey(t, endpoints, "GET /").OperationID)
	assert.Equal(t, "listNamed", endpointByKey(t, endpoints, "GET /named").OperationID)
}

func TestExtractMetadata(t *testing.T) {
	endpoints := extractFromYAML(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths:
  /old:
    get:
      operationId: oldOp
      summary: Old operation
      description: Superseded by /new.
      deprecated: true
      tags: [legacy]
      responses:
        "200":
          description: still works
          content:
            application/json:
              schema: {type: object}
`)

	e := endpointByKey(t, endpoints, "GET /old")
	assert.True(t, e.Deprecated)
	assert.Equal(t, "Old operation", e.Summary)
	assert.Equal(t, []string{"legacy"}, e.Tags)

	require.Contains(t, e.Responses, "200")
	assert.Equal(t, "still works", e.Responses["200"].Description)
	assert.Contains(t, e.Responses["200"].Content, "application/json")
}

func TestSynthesizeOperationID(t *testing.T) {
	cases := []struct {
		method, path, want string
	}{
		{"GET", "/users", "get_users"},
		{"POST", "/users/{userId}/roles", "post_users_userId_roles"},
		{"DELETE", "/", "delete_root"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, synthesizeOperationID(tc.method, tc.path))
	}
}

func TestSchemaToMapDepthLimit(t *testing.T) {
	// Build a chain deeper than the limit; the tail must degrade to a $ref
	// fragment instead of recursing forever.
	leaf := openapi3.NewSchemaRef("#/components/schemas/Leaf", nil)
	ref := leaf
	for i := 0; i < maxSchemaDepth+2; i++ {
		parent := openapi3.NewObjectSchema()
		parent.Properties = openapi3.Schemas{"child": ref}
		ref = openapi3.NewSchemaRef("", parent)
	}

	out := schemaToMap(ref, 0)
	require.NotNil(t, out)
	assert.Equal(t, "object", out["type"])
}
