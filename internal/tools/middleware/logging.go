package middleware

import (
	"context"
	"time"

	"stockadvisor/internal/tools"
	"stockadvisor/pkg/logger"
)

// LoggingMiddleware records one debug line per served tool call.
type LoggingMiddleware struct {
	log *logger.Logger
}

// NewLoggingMiddleware constructs a middleware writing to log.
func NewLoggingMiddleware(log *logger.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{log: log}
}

// Wrap adds call logging around a tool.
func (m *LoggingMiddleware) Wrap(t tools.Tool) tools.Tool {
	if m == nil || m.log == nil {
		return t
	}

	return tools.New(t.Definition(), func(ctx context.Context, args map[string]any) (string, error) {
		start := time.Now()
		result, err := t.Execute(ctx, args)

		fields := []interface{}{
			"tool", t.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
			"success", err == nil,
		}
		if err != nil {
			fields = append(fields, "error", err)
			m.log.Warnw("Tool call failed", fields...)
		} else {
			m.log.Debugw("Tool call served", fields...)
		}

		return result, err
	})
}
