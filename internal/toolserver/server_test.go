package toolserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/internal/tools"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

func testRegistry() *tools.Registry {
	r := tools.NewRegistry()
	r.Register(tools.New(tools.Definition{
		Name:        "echo_symbol",
		Description: "Echoes the symbol",
		Params: []tools.Param{
			{Name: "symbol", Type: tools.TypeString, Required: true},
			{Name: "count", Type: tools.TypeInt, Default: 1},
		},
	}, func(_ context.Context, args map[string]any) (string, error) {
		sym, _ := args["symbol"].(string)
		if sym == "FAIL" {
			return "", errors.New("Error fetching history for FAIL: boom")
		}
		return "symbol=" + sym, nil
	}))
	return r
}

func newClient(t *testing.T) *client.Client {
	t.Helper()
	srv := New(testRegistry(), "test", logger.Nop())

	c, err := client.NewInProcessClient(srv.MCP())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	init := mcp.InitializeRequest{}
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "0"}
	_, err = c.Initialize(ctx, init)
	require.NoError(t, err)
	return c
}

func TestListToolsExposesSchema(t *testing.T) {
	c := newClient(t)

	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)
	require.Len(t, res.Tools, 1)

	tool := res.Tools[0]
	assert.Equal(t, "echo_symbol", tool.Name)
	assert.Equal(t, []string{"symbol"}, tool.InputSchema.Required)
	count, ok := tool.InputSchema.Properties["count"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integer", count["type"])
}

func TestCallTool(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Name = "echo_symbol"
	req.Params.Arguments = map[string]any{"symbol": "AAPL"}
	res, err := c.CallTool(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "symbol=AAPL", res.Content[0].(mcp.TextContent).Text)

	req.Params.Arguments = map[string]any{"symbol": "FAIL"}
	res, err = c.CallTool(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error fetching history for FAIL: boom", res.Content[0].(mcp.TextContent).Text)
}

func TestDescribeCatalog(t *testing.T) {
	for _, def := range tools.Definitions() {
		tool := Describe(def)
		assert.Equal(t, def.Name, tool.Name)
		assert.Equal(t, "object", tool.InputSchema.Type)
		assert.Len(t, tool.InputSchema.Properties, len(def.Params))
	}

	history, _ := tools.Lookup(tools.StockHistory)
	schema := Describe(history).InputSchema
	assert.Equal(t, []string{"symbol"}, schema.Required)
	assert.Equal(t, "1mo", schema.Properties["period"].(map[string]any)["default"])
}
