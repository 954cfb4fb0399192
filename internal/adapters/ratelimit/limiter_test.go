package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/pkg/errors"
)

func TestLimiterBurst(t *testing.T) {
	l := NewLimiter("yahoo", 60) // 1 rps, burst 6

	for i := 0; i < 6; i++ {
		assert.True(t, l.Allow(), "request %d should fit the burst", i)
	}
	assert.False(t, l.Allow())
}

func TestLimiterWaitHonoursContext(t *testing.T) {
	l := NewLimiter("ddg", 1)
	require.True(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRateLimitExceeded))
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter("off", 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Equal(t, "off", l.Name())
}
