package watchlist

import "context"

// Repository keeps an ordered, duplicate-free list of ticker symbols per user.
type Repository interface {
	// Add appends symbol unless already present; added reports whether it was new.
	Add(ctx context.Context, username, symbol string) (added bool, err error)
	List(ctx context.Context, username string) ([]string, error)
}
