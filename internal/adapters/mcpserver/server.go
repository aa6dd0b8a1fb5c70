// Package mcpserver exposes the generated tool set over the Model Context
// Protocol on stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/GabrielNunesIT/openapi-mcp/internal/adapters/invoker"
	"github.com/GabrielNunesIT/openapi-mcp/internal/adapters/toolgen"
)

// Server bridges MCP tool calls to endpoint invocations.
type Server struct {
	mcp     *server.MCPServer
	toolset *toolgen.Toolset
	invoker *invoker.Invoker
	ictx    *invoker.Context
	log     logger.ILogger
}

// New builds an MCP server registering one tool per descriptor.
func New(name, version string, toolset *toolgen.Toolset, inv *invoker.Invoker, ictx *invoker.Context, log logger.ILogger) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		toolset: toolset,
		invoker: inv,
		ictx:    ictx,
		log:     log,
	}

	for _, desc := range toolset.Descriptors() {
		tool := mcp.NewToolWithRawSchema(desc.Name, desc.Description, desc.InputSchema)
		s.mcp.AddTool(tool, s.handleCall(desc.Name))
	}

	return s
}

// handleCall returns the handler for one tool. Pre-flight failures (missing
// parameters, unresolved server URL) surface as tool errors; HTTP outcomes,
// including non-2xx statuses and network failures, surface as results for
// the caller to interpret.
func (s *Server) handleCall(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flat, ok := s.toolset.Lookup(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("tool not found: %s", name)), nil
		}

		s.log.Infof("Tool call: %s (%s %s)", name, flat.Endpoint.Method, flat.Endpoint.Path)

		result, err := s.invoker.Invoke(ctx, flat, request.GetArguments(), s.ictx)
		if err != nil {
			s.log.Warningf("Tool call %s rejected: %v", name, err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		rendered, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render result: %v", err)), nil
		}

		return mcp.NewToolResultText(string(rendered)), nil
	}
}

// ServeStdio runs the MCP server loop until the transport closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
