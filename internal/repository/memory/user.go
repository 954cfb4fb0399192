package memory

import (
	"context"
	"sync"

	"stockadvisor/internal/domain/user"
	"stockadvisor/pkg/errors"
)

// UserRepository is a process-lifetime user store.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]user.User)}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.Username]; exists {
		return errors.Wrapf(errors.ErrAlreadyExists, "user %s", u.Username)
	}
	r.users[u.Username] = *u
	return nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "user %s", username)
	}
	return &u, nil
}

func (r *UserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

var _ user.Repository = (*UserRepository)(nil)
