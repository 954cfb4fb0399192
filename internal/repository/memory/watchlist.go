package memory

import (
	"context"
	"slices"
	"sync"

	"stockadvisor/internal/domain/watchlist"
)

// WatchlistRepository is a process-lifetime watchlist store.
type WatchlistRepository struct {
	mu    sync.RWMutex
	lists map[string][]string
}

func NewWatchlistRepository() *WatchlistRepository {
	return &WatchlistRepository{lists: make(map[string][]string)}
}

func (r *WatchlistRepository) Add(_ context.Context, username, symbol string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.lists[username], symbol) {
		return false, nil
	}
	r.lists[username] = append(r.lists[username], symbol)
	return true, nil
}

func (r *WatchlistRepository) List(_ context.Context, username string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.lists[username]), nil
}

var _ watchlist.Repository = (*WatchlistRepository)(nil)
