package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsUnwrap(t *testing.T) {
	cause := New("exec: not found")

	startup := &StartupError{Command: "advisor", Err: cause}
	assert.True(t, Is(startup, cause))
	assert.Contains(t, startup.Error(), "advisor")

	notStarted := &NotStartedError{Tool: "get_stock_news"}
	assert.True(t, Is(notStarted, ErrNotStarted))

	invocation := &ToolInvocationError{Tool: "x", Message: "boom", Err: ErrUnknownTool}
	assert.True(t, Is(invocation, ErrUnknownTool))
	assert.Equal(t, "tool x failed: boom", invocation.Error())

	var target *ToolInvocationError
	assert.True(t, As(Wrap(invocation, "call"), &target))
	assert.Equal(t, "x", target.Tool)

	run := &AgentRunError{Agent: "advisor", Err: ErrModelUnavailable}
	assert.True(t, Is(run, ErrModelUnavailable))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ctx"))
	assert.Nil(t, Wrapf(nil, "ctx %d", 1))
	assert.EqualError(t, Wrapf(ErrNotFound, "user %s", "bob"), "user bob: resource not found")
}

func TestValidationErrorMatchesInvalidInput(t *testing.T) {
	err := NewValidationError("symbol", "required", "")
	assert.True(t, Is(err, ErrInvalidInput))
}
