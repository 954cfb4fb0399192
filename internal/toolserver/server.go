package toolserver

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"stockadvisor/internal/tools"
	"stockadvisor/pkg/logger"
)

// Name is the MCP server name announced during the handshake.
const Name = "stock_data"

// Server exposes a tool registry over MCP.
type Server struct {
	mcp *server.MCPServer
	log *logger.Logger
}

// New registers every tool in registry on a fresh MCP server.
func New(registry *tools.Registry, version string, log *logger.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(Name, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		log: log.With("component", "toolserver"),
	}

	for _, name := range registry.List() {
		t, _ := registry.Get(name)
		s.mcp.AddTool(Describe(t.Definition()), s.handler(t))
	}
	s.log.Debugw("Tool server ready", "tools", registry.List())

	return s
}

// MCP returns the underlying server, e.g. for in-process clients.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over the given streams until ctx is cancelled or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.log.Desugar()))
	return stdio.Listen(ctx, in, out)
}

func (s *Server) handler(t tools.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := t.Execute(ctx, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// Describe converts a catalog definition to an MCP tool with a JSON schema.
func Describe(def tools.Definition) mcp.Tool {
	props := make(map[string]any, len(def.Params))
	required := []string{}
	for _, p := range def.Params {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}
