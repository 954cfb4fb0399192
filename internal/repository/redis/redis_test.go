package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/internal/domain/user"
)

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	c := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "advisor:users", usersKey)

	r := NewWatchlistRepository(nil)
	set, list := r.keys("alice")
	assert.Equal(t, "advisor:watchlist:alice:set", set)
	assert.Equal(t, "advisor:watchlist:alice:list", list)
}

func TestRepositoriesWrapConnectionErrors(t *testing.T) {
	ctx := context.Background()
	client := unreachableClient(t)

	_, err := NewWatchlistRepository(client).Add(ctx, "alice", "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add AAPL")

	err = NewUserRepository(client).Create(ctx, &user.User{Username: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save user alice")
}
