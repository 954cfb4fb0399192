package callbacks

import (
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/tool"

	"stockadvisor/pkg/logger"
)

// AuditLogAfterToolCallback logs all tool executions
func AuditLogAfterToolCallback() llmagent.AfterToolCallback {
	return func(ctx tool.Context, t tool.Tool, args, result map[string]any, err error) (map[string]any, error) {
		log := logger.Get().With(
			"component", "tool_audit",
			"tool", t.Name(),
			"agent", ctx.AgentName(),
			"session", ctx.SessionID(),
		)

		if err != nil {
			log.Warnf("Tool %s failed: %v", t.Name(), err)
		} else {
			log.Debugf("Tool %s executed with args %v", t.Name(), args)
		}

		return result, err
	}
}
