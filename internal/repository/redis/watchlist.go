package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stockadvisor/internal/domain/watchlist"
	"stockadvisor/pkg/errors"
)

// addScript appends to the list only when the set did not contain the symbol,
// keeping insertion order and uniqueness atomic.
var addScript = redis.NewScript(`
if redis.call("SADD", KEYS[1], ARGV[1]) == 1 then
  redis.call("RPUSH", KEYS[2], ARGV[1])
  return 1
end
return 0
`)

// WatchlistRepository implements watchlist.Repository with a set for membership
// and a list for order
type WatchlistRepository struct {
	client *redis.Client
}

func NewWatchlistRepository(client *redis.Client) *WatchlistRepository {
	return &WatchlistRepository{client: client}
}

func (r *WatchlistRepository) Add(ctx context.Context, username, symbol string) (bool, error) {
	setKey, listKey := r.keys(username)
	added, err := addScript.Run(ctx, r.client, []string{setKey, listKey}, symbol).Int()
	if err != nil {
		return false, errors.Wrapf(err, "failed to add %s to watchlist of %s", symbol, username)
	}
	return added == 1, nil
}

func (r *WatchlistRepository) List(ctx context.Context, username string) ([]string, error) {
	_, listKey := r.keys(username)
	symbols, err := r.client.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list watchlist of %s", username)
	}
	return symbols, nil
}

func (r *WatchlistRepository) keys(username string) (string, string) {
	return fmt.Sprintf("advisor:watchlist:%s:set", username), fmt.Sprintf("advisor:watchlist:%s:list", username)
}

var _ watchlist.Repository = (*WatchlistRepository)(nil)
