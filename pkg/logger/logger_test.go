package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/pkg/errors"
)

type recordingTracker struct {
	captured []error
}

func (r *recordingTracker) CaptureError(_ context.Context, err error, _ map[string]string) error {
	r.captured = append(r.captured, err)
	return nil
}

func (r *recordingTracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}
func (r *recordingTracker) SetUser(context.Context, string, string) {}
func (r *recordingTracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}
func (r *recordingTracker) Flush(context.Context) error { return nil }

func TestErrorForwardsToTracker(t *testing.T) {
	require.NoError(t, InitWithOptions(Options{Level: "debug", Env: "test", OutputPaths: []string{"stderr"}}))

	tracker := &recordingTracker{}
	SetErrorTracker(tracker)
	defer SetErrorTracker(nil)

	child := Get().With("component", "test")
	child.Errorf("tool %s failed", "get_stock_news")
	child.ErrorWithContext(context.Background(), errors.ErrTimeout, map[string]string{"tool": "x"})

	require.Len(t, tracker.captured, 2)
	assert.EqualError(t, tracker.captured[0], "tool get_stock_news failed")
	assert.ErrorIs(t, tracker.captured[1], errors.ErrTimeout)
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Init("verbose", "production"))
	assert.False(t, Get().Desugar().Core().Enabled(-1))
	assert.True(t, Get().Desugar().Core().Enabled(0))
}
