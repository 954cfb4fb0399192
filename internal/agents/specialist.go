package agents

import (
	"context"
	"strings"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/tool"

	"stockadvisor/internal/agents/callbacks"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// ToolSource hands out agent tools by name, skipping the ones it lacks.
type ToolSource interface {
	Tools(names ...string) []tool.Tool
}

// Specialist answers one kind of question with its own tool subset.
type Specialist struct {
	spec  RoleSpec
	cfg   Config
	tools []tool.Tool
	log   *logger.Logger
}

// NewSpecialist resolves the role's tools from src once; missing tools are
// simply not offered to the model.
func NewSpecialist(cfg Config, spec RoleSpec, src ToolSource) *Specialist {
	cfg = cfg.withDefaults()
	return &Specialist{
		spec:  spec,
		cfg:   cfg,
		tools: src.Tools(spec.Tools...),
		log:   logger.Get().With("component", "specialist", "role", spec.Role),
	}
}

// Role returns the specialist's role.
func (s *Specialist) Role() Role {
	return s.spec.Role
}

// Spec returns the role specification the specialist was built from.
func (s *Specialist) Spec() RoleSpec {
	return s.spec
}

// Analyze runs the specialist on topic in a fresh session. Failures are
// carried in the Result rather than returned.
func (s *Specialist) Analyze(ctx context.Context, topic string) Result {
	res := Result{Role: s.spec.Role}

	ag, prompt, err := s.build(topic)
	if err != nil {
		res.Err = &errors.AgentRunError{Agent: s.spec.AgentName, Err: err}
		return res
	}

	s.log.Infof("Analyzing %q", topic)
	out, err := execute(ctx, s.cfg, ag, prompt)
	res.SessionID = out.SessionID
	if err != nil {
		res.Err = err
		return res
	}
	res.Text = out.Text
	return res
}

func (s *Specialist) build(topic string) (agent.Agent, string, error) {
	if s.cfg.Model == nil {
		return nil, "", errors.ErrModelUnavailable
	}

	instruction, err := s.cfg.Templates.Render(s.spec.Instruction, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "render instruction")
	}
	prompt, err := s.cfg.Templates.Render(s.spec.Prompt, map[string]any{"Topic": topic})
	if err != nil {
		return nil, "", errors.Wrap(err, "render prompt")
	}

	ag, err := llmagent.New(llmagent.Config{
		Name:                s.spec.AgentName,
		Description:         s.spec.Description,
		Model:               s.cfg.Model,
		Instruction:         strings.TrimSpace(instruction),
		Tools:               s.tools,
		AfterToolCallbacks:  []llmagent.AfterToolCallback{callbacks.AuditLogAfterToolCallback()},
		AfterModelCallbacks: []llmagent.AfterModelCallback{callbacks.TokenCountingCallback(s.cfg.modelName())},
	})
	if err != nil {
		return nil, "", errors.Wrap(err, "create agent")
	}
	return ag, strings.TrimSpace(prompt), nil
}
