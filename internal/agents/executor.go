package agents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	adksession "google.golang.org/adk/session"
	"google.golang.org/genai"

	"stockadvisor/internal/metrics"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// executionOutput is what one agent run produced.
type executionOutput struct {
	Text      string
	SessionID string
	Turns     int
	Duration  time.Duration
}

// execute runs an agent once in a brand-new in-memory session and returns
// the last non-empty final text. Sessions are never reused across calls.
func execute(ctx context.Context, cfg Config, ag agent.Agent, prompt string) (*executionOutput, error) {
	start := time.Now()
	sessionID := uuid.New().String()
	log := logger.Get().With("component", "agent_runner", "agent", ag.Name(), "session", sessionID)

	out, err := runSession(ctx, cfg, ag, sessionID, prompt, log)
	metrics.RecordAgentRun(ag.Name(), cfg.modelName(), err == nil, time.Since(start))
	if err != nil {
		log.Warnf("Agent run failed: %v", err)
		return &executionOutput{SessionID: sessionID, Duration: time.Since(start)}, &errors.AgentRunError{Agent: ag.Name(), Err: err}
	}

	out.Duration = time.Since(start)
	log.Debugf("Agent run completed: turns=%d duration=%s", out.Turns, out.Duration)
	return out, nil
}

func runSession(ctx context.Context, cfg Config, ag agent.Agent, sessionID, prompt string, log *logger.Logger) (*executionOutput, error) {
	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	sessions := adksession.InMemoryService()
	if _, err := sessions.Create(ctx, &adksession.CreateRequest{
		AppName:   cfg.AppName,
		UserID:    cfg.UserID,
		SessionID: sessionID,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	r, err := runner.New(runner.Config{
		AppName:        cfg.AppName,
		Agent:          ag,
		SessionService: sessions,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ADK runner")
	}

	out := &executionOutput{SessionID: sessionID}
	msg := genai.NewContentFromText(prompt, genai.RoleUser)

	for event, err := range r.Run(ctx, cfg.UserID, sessionID, msg, agent.RunConfig{}) {
		if err != nil {
			return nil, err
		}
		if event == nil || event.LLMResponse.Partial {
			continue
		}
		if event.Content == nil {
			continue
		}

		out.Turns++
		if text := eventText(event.Content); text != "" {
			out.Text = text
			log.Debugf("Agent %s produced text (%d chars)", event.Author, len(text))
		}
	}

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Join(errors.ErrTimeout, err)
		}
		return nil, err
	}

	return out, nil
}

// eventText joins the visible text parts of a response, ignoring thoughts.
func eventText(content *genai.Content) string {
	var parts []string
	for _, part := range content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		parts = append(parts, part.Text)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
