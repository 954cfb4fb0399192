package agents

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"stockadvisor/internal/adapters/config"
	"stockadvisor/internal/bridge"
	"stockadvisor/internal/tools"
	"stockadvisor/internal/toolserver"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// scriptedLLM calls every declared function once, then answers with the
// concatenated function results. It never talks to a real model.
type scriptedLLM struct {
	topic string
}

func (m *scriptedLLM) Name() string { return "scripted" }

func (m *scriptedLLM) GenerateContent(_ context.Context, req *model.LLMRequest, _ bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		if results := functionResults(req); len(results) > 0 {
			yield(&model.LLMResponse{Content: &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{
					{Text: "weighing the evidence", Thought: true},
					{Text: strings.Join(results, "\n")},
				},
			}}, nil)
			return
		}

		names := declaredFunctions(req)
		if len(names) == 0 {
			yield(&model.LLMResponse{Content: genai.NewContentFromText("No tools available.", genai.RoleModel)}, nil)
			return
		}

		parts := make([]*genai.Part, 0, len(names))
		for _, name := range names {
			parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
				ID:   "call_" + name,
				Name: name,
				Args: m.argsFor(name),
			}})
		}
		yield(&model.LLMResponse{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}}, nil)
	}
}

func (m *scriptedLLM) argsFor(name string) map[string]any {
	switch {
	case strings.HasPrefix(name, "consult_"):
		return map[string]any{"topic": m.topic}
	case name == tools.SearchWeb:
		return map[string]any{"query": m.topic + " ETFs"}
	default:
		return map[string]any{"symbol": m.topic}
	}
}

func declaredFunctions(req *model.LLMRequest) []string {
	var names []string
	if req.Config == nil {
		return nil
	}
	for _, t := range req.Config.Tools {
		if t == nil {
			continue
		}
		for _, decl := range t.FunctionDeclarations {
			names = append(names, decl.Name)
		}
	}
	sort.Strings(names)
	return names
}

func functionResults(req *model.LLMRequest) []string {
	var out []string
	for _, c := range req.Contents {
		if c == nil {
			continue
		}
		for _, p := range c.Parts {
			if p == nil || p.FunctionResponse == nil {
				continue
			}
			if s, ok := p.FunctionResponse.Response["result"].(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(p.FunctionResponse.Response))
			}
		}
	}
	return out
}

// factCatalog serves every real tool definition with a canned fact.
func factCatalog(failing ...string) *tools.Registry {
	fails := map[string]bool{}
	for _, name := range failing {
		fails[name] = true
	}

	r := tools.NewRegistry()
	for _, def := range tools.Definitions() {
		name := def.Name
		r.Register(tools.New(def, func(_ context.Context, args map[string]any) (string, error) {
			if fails[name] {
				return "", fmt.Errorf("Error fetching %s for %v: upstream down", name, args["symbol"])
			}
			subject := args["symbol"]
			if subject == nil {
				subject = args["query"]
			}
			return fmt.Sprintf("FACT(%s:%v)", name, subject), nil
		}))
	}
	return r
}

func inProcessBridge(r *tools.Registry) *bridge.Bridge {
	srv := toolserver.New(r, "test", logger.Nop())
	return bridge.New(
		bridge.Config{Command: "in-process", StartupTimeout: 5 * time.Second},
		logger.Nop(),
		bridge.WithDialer(func(ctx context.Context) (bridge.MCPClient, error) {
			c, err := client.NewInProcessClient(srv.MCP())
			if err != nil {
				return nil, err
			}
			if err := c.Start(ctx); err != nil {
				return nil, err
			}
			return c, nil
		}),
	)
}

func brokenBridge() *bridge.Bridge {
	return bridge.New(
		bridge.Config{Command: "missing-tool-server", StartupTimeout: time.Second},
		logger.Nop(),
		bridge.WithDialer(func(context.Context) (bridge.MCPClient, error) {
			return nil, errors.New("executable not found")
		}),
	)
}

func testConfig(mode string) Config {
	return Config{
		AppName: "stock_advisor_test",
		UserID:  "tester",
		Mode:    mode,
		Model:   &scriptedLLM{topic: "AAPL"},
	}
}

func newOrchestrator(t *testing.T, cfg Config, br Bridge) *Orchestrator {
	t.Helper()
	o, err := New(context.Background(), cfg, br)
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func TestDelegateAnalyzeReachesEverySpecialist(t *testing.T) {
	o := newOrchestrator(t, testConfig(config.ModeDelegate), inProcessBridge(factCatalog()))

	assert.Equal(t, []string{"consult_technical", "consult_news", "consult_fundamental", "consult_portfolio"}, o.ToolNames())

	res := o.Analyze(context.Background(), "aapl")
	require.True(t, res.OK(), res.String())
	assert.Equal(t, RoleAdvisor, res.Role)
	assert.NotEmpty(t, res.SessionID)

	for _, name := range []string{
		tools.StockHistory, tools.TechnicalSummary, tools.StockNews,
		tools.StockProfile, tools.DetailedInfo, tools.ETFInfo,
	} {
		assert.Contains(t, res.Text, "FACT("+name+":AAPL)")
	}
	assert.Contains(t, res.Text, "FACT(search_web:AAPL ETFs)")
	assert.NotContains(t, res.Text, "weighing the evidence")
}

func TestFlatModeOffersDataToolsOnce(t *testing.T) {
	o := newOrchestrator(t, testConfig(config.ModeFlat), inProcessBridge(factCatalog()))

	assert.ElementsMatch(t, []string{
		tools.StockHistory, tools.TechnicalSummary, tools.StockNews,
		tools.StockProfile, tools.DetailedInfo, tools.SearchWeb, tools.ETFInfo,
	}, o.ToolNames())

	res := o.Run(context.Background(), "Analyze AAPL")
	require.True(t, res.OK(), res.String())
	assert.Contains(t, res.Text, "FACT(get_technical_summary:AAPL)")
}

func TestSpecialistUsesOnlyItsTools(t *testing.T) {
	o := newOrchestrator(t, testConfig(config.ModeDelegate), inProcessBridge(factCatalog()))

	sp, ok := o.Specialist(RoleNews)
	require.True(t, ok)

	res := sp.Analyze(context.Background(), "AAPL")
	require.True(t, res.OK(), res.String())
	assert.Equal(t, "FACT(get_stock_news:AAPL)", res.Text)
}

func TestEachRunGetsFreshSession(t *testing.T) {
	o := newOrchestrator(t, testConfig(config.ModeDelegate), inProcessBridge(factCatalog()))
	sp, ok := o.Specialist(RoleTechnical)
	require.True(t, ok)

	first := sp.Analyze(context.Background(), "AAPL")
	second := sp.Analyze(context.Background(), "AAPL")

	require.True(t, first.OK())
	require.True(t, second.OK())
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, first.Text, second.Text)
}

func TestToolFailureIsReportedAsText(t *testing.T) {
	o := newOrchestrator(t, testConfig(config.ModeDelegate), inProcessBridge(factCatalog(tools.StockNews)))
	sp, _ := o.Specialist(RoleNews)

	res := sp.Analyze(context.Background(), "AAPL")
	require.True(t, res.OK(), res.String())
	assert.Equal(t, "Error calling get_stock_news: Error fetching get_stock_news for AAPL: upstream down", res.Text)
}

func TestDegradedWhenBridgeFailsToStart(t *testing.T) {
	o := newOrchestrator(t, testConfig(config.ModeFlat), brokenBridge())

	assert.Empty(t, o.ToolNames())
	res := o.Run(context.Background(), "Analyze AAPL")
	require.True(t, res.OK(), res.String())
	assert.Equal(t, "No tools available.", res.Text)
}

func TestDegradedDelegateStillConsults(t *testing.T) {
	o := newOrchestrator(t, testConfig(config.ModeDelegate), brokenBridge())

	res := o.Analyze(context.Background(), "AAPL")
	require.True(t, res.OK(), res.String())
	assert.Equal(t, strings.Repeat("No tools available.\n", 3)+"No tools available.", res.Text)
}

func TestModelUnavailableFailsRun(t *testing.T) {
	cfg := testConfig(config.ModeDelegate)
	cfg.Model = nil
	o := newOrchestrator(t, cfg, inProcessBridge(factCatalog()))

	res := o.Run(context.Background(), "Analyze AAPL")
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, errors.ErrModelUnavailable)
	assert.Equal(t, "Advisor failed: "+errors.ErrModelUnavailable.Error(), res.String())

	sp, _ := o.Specialist(RoleFundamental)
	res = sp.Analyze(context.Background(), "AAPL")
	assert.Equal(t, "Fundamental Analysis failed: "+errors.ErrModelUnavailable.Error(), res.String())
}

func TestInvalidModeRejected(t *testing.T) {
	_, err := New(context.Background(), testConfig("swarm"), inProcessBridge(factCatalog()))
	var verr *errors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCloseIsIdempotent(t *testing.T) {
	o, err := New(context.Background(), testConfig(config.ModeDelegate), inProcessBridge(factCatalog()))
	require.NoError(t, err)

	assert.NoError(t, o.Close())
	assert.NoError(t, o.Close())

	sp, _ := o.Specialist(RoleTechnical)
	res := sp.Analyze(context.Background(), "AAPL")
	require.True(t, res.OK())
	assert.Contains(t, res.Text, "Error calling")
}
