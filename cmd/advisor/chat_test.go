package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/internal/agents"
	"stockadvisor/pkg/errors"
)

type echoAdvisor struct {
	inputs []string
}

func (a *echoAdvisor) Run(_ context.Context, input string) agents.Result {
	a.inputs = append(a.inputs, input)
	if input == "boom" {
		return agents.Result{Role: agents.RoleAdvisor, Err: &errors.AgentRunError{Agent: "advisor_agent", Err: errors.New("model overloaded")}}
	}
	return agents.Result{Role: agents.RoleAdvisor, Text: "Looked at " + input}
}

func TestRunChat(t *testing.T) {
	a := &echoAdvisor{}
	var out bytes.Buffer

	err := runChat(context.Background(), strings.NewReader("AAPL\n\n  \nboom\nQUIT\nnever\n"), &out, a)
	require.NoError(t, err)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Welcome to the Multi-Agent Stock Advisor!\nType 'exit' to quit.\n"))
	assert.Contains(t, text, "Enter a stock symbol or query: ")
	assert.Contains(t, text, "Agent: Looked at AAPL\n")
	assert.Contains(t, text, "Agent: Advisor failed: model overloaded\n")
	assert.True(t, strings.HasSuffix(text, "Goodbye!\n"))
	assert.Equal(t, []string{"AAPL", "boom"}, a.inputs)
}

func TestRunChatStopsAtEOF(t *testing.T) {
	a := &echoAdvisor{}
	var out bytes.Buffer

	require.NoError(t, runChat(context.Background(), strings.NewReader("MSFT"), &out, a))
	assert.Equal(t, []string{"MSFT"}, a.inputs)
	assert.NotContains(t, out.String(), "Goodbye!")
}
