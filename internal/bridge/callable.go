package bridge

import (
	"context"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"stockadvisor/pkg/errors"
)

// Callable invokes one remote tool with arguments bound by parameter name.
type Callable func(ctx context.Context, args map[string]any) (string, error)

// Callable builds a typed wrapper for a discovered tool. Undeclared keys and
// missing required keys are rejected before anything is sent.
func (b *Bridge) Callable(name string) (Callable, error) {
	d, err := b.descriptor(name)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, args map[string]any) (string, error) {
		bound, err := d.bind(args)
		if err != nil {
			return "", &errors.ToolInvocationError{Tool: name, Message: err.Error(), Err: err}
		}
		return b.Call(ctx, name, bound)
	}, nil
}

func (b *Bridge) descriptor(name string) (Descriptor, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state != stateRunning {
		return Descriptor{}, &errors.NotStartedError{Tool: name}
	}
	d, ok := b.descriptors[name]
	if !ok {
		return Descriptor{}, &errors.ToolInvocationError{Tool: name, Message: "unknown tool", Err: errors.ErrUnknownTool}
	}
	return d, nil
}

// Tool exposes a remote tool to ADK agents. Failures are returned to the model
// as text so one broken tool does not abort the run.
func (b *Bridge) Tool(name string) (tool.Tool, error) {
	call, err := b.Callable(name)
	if err != nil {
		return nil, err
	}
	d, _ := b.descriptor(name)

	return functiontool.New(
		functiontool.Config{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.Schema(),
		},
		func(ctx tool.Context, args map[string]any) (map[string]any, error) {
			text, err := call(ctx, args)
			if err != nil {
				return map[string]any{"result": "Error calling " + name + ": " + errorMessage(err)}, nil
			}
			return map[string]any{"result": text}, nil
		},
	)
}

// Tools wraps every named tool that exists. Missing names are logged and skipped.
func (b *Bridge) Tools(names ...string) []tool.Tool {
	out := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		t, err := b.Tool(name)
		if err != nil {
			b.log.Warnw("Tool unavailable, skipping", "tool", name, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out
}

func errorMessage(err error) string {
	var inv *errors.ToolInvocationError
	if errors.As(err, &inv) {
		return inv.Message
	}
	return err.Error()
}
