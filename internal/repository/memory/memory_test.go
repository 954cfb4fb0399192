package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/internal/domain/user"
	"stockadvisor/pkg/errors"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &user.User{Username: "alice", PasswordHash: "h"}))
	err := repo.Create(ctx, &user.User{Username: "alice", PasswordHash: "other"})
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h", got.PasswordHash)

	_, err = repo.GetByUsername(ctx, "bob")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWatchlistRepositoryKeepsOrderAndDedupes(t *testing.T) {
	ctx := context.Background()
	repo := NewWatchlistRepository()

	for _, sym := range []string{"AAPL", "MSFT", "AAPL", "NVDA"} {
		_, err := repo.Add(ctx, "alice", sym)
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, list)

	empty, err := repo.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWatchlistRepositoryConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	repo := NewWatchlistRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Add(ctx, "alice", "AAPL")
		}()
	}
	wg.Wait()

	list, _ := repo.List(ctx, "alice")
	assert.Equal(t, []string{"AAPL"}, list)
}
