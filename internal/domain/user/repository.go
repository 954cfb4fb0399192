package user

import "context"

// Repository stores API accounts keyed by username.
// Create returns errors.ErrAlreadyExists for a taken username;
// GetByUsername returns errors.ErrNotFound for an unknown one.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	Count(ctx context.Context) (int, error)
}
