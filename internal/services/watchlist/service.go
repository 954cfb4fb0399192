package watchlist

import (
	"context"
	"strings"

	"stockadvisor/internal/domain/watchlist"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// Service manages per-user watchlists (Application Service)
type Service struct {
	repo watchlist.Repository
	log  *logger.Logger
}

// NewService creates a new watchlist service
func NewService(repo watchlist.Repository, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("service", "watchlist"),
	}
}

// Add appends symbol to the user's watchlist. Adding a symbol twice is a no-op.
func (s *Service) Add(ctx context.Context, username, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return errors.NewValidationError("symbol", "required", symbol)
	}

	added, err := s.repo.Add(ctx, username, symbol)
	if err != nil {
		return errors.Wrap(err, "failed to add symbol")
	}
	if added {
		s.log.Debugw("Symbol added to watchlist", "username", username, "symbol", symbol)
	}
	return nil
}

// List returns the user's symbols in insertion order; never nil.
func (s *Service) List(ctx context.Context, username string) ([]string, error) {
	symbols, err := s.repo.List(ctx, username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list watchlist")
	}
	if symbols == nil {
		symbols = []string{}
	}
	return symbols, nil
}
