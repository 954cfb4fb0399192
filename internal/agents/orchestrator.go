package agents

import (
	"context"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"stockadvisor/internal/adapters/config"
	"stockadvisor/internal/agents/callbacks"
	"stockadvisor/internal/bridge"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

const advisorAgentName = "advisor_agent"

// Bridge is the tool catalog the orchestrator owns for its lifetime.
type Bridge interface {
	ToolSource
	Start(ctx context.Context) error
	Descriptors() []bridge.Descriptor
	Close() error
}

// toolInfo is what advisor instructions list for each offered tool.
type toolInfo struct {
	Name        string
	Description string
}

// Orchestrator is the top-level advisor. In delegate mode it consults the
// specialists through consult_<role> tools; in flat mode it calls data tools
// directly.
type Orchestrator struct {
	cfg         Config
	bridge      Bridge
	specialists []*Specialist
	tools       []tool.Tool
	infos       []toolInfo
	log         *logger.Logger
}

// New starts the bridge and assembles the advisor. A bridge that fails to
// start is logged and the advisor runs degraded, with whatever tools remain.
func New(ctx context.Context, cfg Config, br Bridge) (*Orchestrator, error) {
	cfg = cfg.withDefaults()
	o := &Orchestrator{
		cfg:    cfg,
		bridge: br,
		log:    logger.Get().With("component", "orchestrator", "mode", cfg.Mode),
	}

	if err := br.Start(ctx); err != nil {
		o.log.ErrorWithContext(ctx, err, map[string]string{"component": "bridge"})
		o.log.Warnf("Tool bridge unavailable, advisor running without data tools")
	}

	for _, spec := range cfg.Roles {
		o.specialists = append(o.specialists, NewSpecialist(cfg, spec, br))
	}

	var err error
	switch cfg.Mode {
	case config.ModeDelegate:
		err = o.delegateTools()
	case config.ModeFlat:
		o.flatTools()
	default:
		err = errors.NewValidationError("mode", "must be delegate or flat", cfg.Mode)
	}
	if err != nil {
		_ = br.Close()
		return nil, err
	}

	o.log.Infof("Advisor ready with %d tools", len(o.tools))
	return o, nil
}

func (o *Orchestrator) delegateTools() error {
	for _, sp := range o.specialists {
		t, err := consultTool(sp)
		if err != nil {
			return errors.Wrapf(err, "consult tool for %s", sp.Role())
		}
		o.tools = append(o.tools, t)
		o.infos = append(o.infos, toolInfo{Name: t.Name(), Description: t.Description()})
	}
	return nil
}

// flatTools offers the union of every role's data tools, once each.
func (o *Orchestrator) flatTools() {
	var names []string
	seen := map[string]bool{}
	for _, spec := range o.cfg.Roles {
		for _, name := range spec.Tools {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	o.tools = o.bridge.Tools(names...)
	descriptions := map[string]string{}
	for _, d := range o.bridge.Descriptors() {
		descriptions[d.Name] = d.Description
	}
	for _, t := range o.tools {
		o.infos = append(o.infos, toolInfo{Name: t.Name(), Description: descriptions[t.Name()]})
	}
}

var topicSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"topic": {Type: "string", Description: "Stock symbol or the user's full question."},
	},
	Required: []string{"topic"},
}

// consultTool exposes a specialist to the advisor model. Its report, or its
// failure line, is returned as the tool result.
func consultTool(sp *Specialist) (tool.Tool, error) {
	spec := sp.Spec()
	return functiontool.New(
		functiontool.Config{
			Name:        "consult_" + string(spec.Role),
			Description: spec.Description,
			InputSchema: topicSchema,
		},
		func(ctx tool.Context, args map[string]any) (map[string]any, error) {
			topic, _ := args["topic"].(string)
			res := sp.Analyze(ctx, strings.TrimSpace(topic))
			return map[string]any{"result": res.String()}, nil
		},
	)
}

// Specialists returns the specialists in role order.
func (o *Orchestrator) Specialists() []*Specialist {
	return o.specialists
}

// Specialist returns the specialist for role, if configured.
func (o *Orchestrator) Specialist(role Role) (*Specialist, bool) {
	for _, sp := range o.specialists {
		if sp.Role() == role {
			return sp, true
		}
	}
	return nil, false
}

// ToolNames lists the tools offered to the advisor model.
func (o *Orchestrator) ToolNames() []string {
	names := make([]string, 0, len(o.tools))
	for _, t := range o.tools {
		names = append(names, t.Name())
	}
	return names
}

// Run answers one user request in a fresh session.
func (o *Orchestrator) Run(ctx context.Context, input string) Result {
	res := Result{Role: RoleAdvisor}

	ag, err := o.build()
	if err != nil {
		res.Err = &errors.AgentRunError{Agent: advisorAgentName, Err: err}
		return res
	}

	out, err := execute(ctx, o.cfg, ag, strings.TrimSpace(input))
	res.SessionID = out.SessionID
	if err != nil {
		res.Err = err
		return res
	}
	res.Text = out.Text
	return res
}

// Analyze asks the advisor for a full recommendation on one symbol.
func (o *Orchestrator) Analyze(ctx context.Context, symbol string) Result {
	prompt, err := o.cfg.Templates.Render("prompts/analyze_symbol", map[string]any{"Symbol": strings.ToUpper(strings.TrimSpace(symbol))})
	if err != nil {
		return Result{Role: RoleAdvisor, Err: &errors.AgentRunError{Agent: advisorAgentName, Err: err}}
	}
	return o.Run(ctx, prompt)
}

func (o *Orchestrator) build() (agent.Agent, error) {
	if o.cfg.Model == nil {
		return nil, errors.ErrModelUnavailable
	}

	instruction, err := o.cfg.Templates.Render("agents/advisor_"+o.cfg.Mode, map[string]any{"Tools": o.infos})
	if err != nil {
		return nil, errors.Wrap(err, "render instruction")
	}

	return llmagent.New(llmagent.Config{
		Name:                advisorAgentName,
		Description:         "Senior investment advisor that synthesizes specialist research into recommendations.",
		Model:               o.cfg.Model,
		Instruction:         strings.TrimSpace(instruction),
		Tools:               o.tools,
		AfterToolCallbacks:  []llmagent.AfterToolCallback{callbacks.AuditLogAfterToolCallback()},
		AfterModelCallbacks: []llmagent.AfterModelCallback{callbacks.TokenCountingCallback(o.cfg.modelName())},
	})
}

// Close stops the tool bridge. Safe to call repeatedly.
func (o *Orchestrator) Close() error {
	return o.bridge.Close()
}
