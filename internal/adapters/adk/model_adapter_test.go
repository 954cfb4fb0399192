package adk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/internal/adapters/config"
	"stockadvisor/pkg/errors"
)

func TestNewModelWithoutCredentials(t *testing.T) {
	m, err := NewModel(context.Background(), config.LLMConfig{Model: "gemini-2.5-flash"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", m.Name())

	var calls int
	for resp, err := range m.GenerateContent(context.Background(), nil, false) {
		calls++
		assert.Nil(t, resp)
		assert.True(t, errors.Is(err, errors.ErrModelUnavailable))
	}
	assert.Equal(t, 1, calls)
}
