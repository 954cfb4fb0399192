package watchlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/internal/repository/memory"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

func TestAddKeepsOrderWithoutDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewWatchlistRepository(), logger.Nop())

	require.NoError(t, svc.Add(ctx, "alice", "aapl"))
	require.NoError(t, svc.Add(ctx, "alice", "MSFT"))
	require.NoError(t, svc.Add(ctx, "alice", " AAPL "))

	symbols, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}

func TestListsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewWatchlistRepository(), logger.Nop())
	require.NoError(t, svc.Add(ctx, "alice", "AAPL"))

	symbols, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.NotNil(t, symbols)
	assert.Empty(t, symbols)
}

func TestAddRejectsEmptySymbol(t *testing.T) {
	svc := NewService(memory.NewWatchlistRepository(), logger.Nop())

	err := svc.Add(context.Background(), "alice", "  ")
	var verr *errors.ValidationError
	assert.ErrorAs(t, err, &verr)
}
