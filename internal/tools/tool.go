package tools

import (
	"context"

	"stockadvisor/pkg/errors"
)

// Tool represents a callable capability served to agents.
type Tool interface {
	// Name returns the unique tool identifier.
	Name() string
	// Definition returns the tool's description and parameter list.
	Definition() Definition
	// Execute performs the tool's action and returns its text output.
	// A non-nil error carries text meant for the model, flagged as a tool error.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]any) (string, error)

// FunctionTool is a simple Tool implementation backed by a handler function.
type FunctionTool struct {
	def     Definition
	handler HandlerFunc
}

// New creates a new function-backed Tool.
func New(def Definition, handler HandlerFunc) Tool {
	return &FunctionTool{
		def:     def,
		handler: handler,
	}
}

// Name returns the tool identifier.
func (t *FunctionTool) Name() string { return t.def.Name }

// Definition returns the tool metadata.
func (t *FunctionTool) Definition() Definition { return t.def }

// Execute runs the underlying handler.
func (t *FunctionTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if t.handler == nil {
		return "", errors.New("tool handler is not defined")
	}

	return t.handler(ctx, args)
}
