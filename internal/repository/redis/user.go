package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"stockadvisor/internal/domain/user"
	"stockadvisor/pkg/errors"
)

const usersKey = "advisor:users"

// UserRepository implements user.Repository as one Redis hash keyed by username
type UserRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal user %s", u.Username)
	}

	created, err := r.client.HSetNX(ctx, usersKey, u.Username, data).Result()
	if err != nil {
		return errors.Wrapf(err, "failed to save user %s to redis", u.Username)
	}
	if !created {
		return errors.Wrapf(errors.ErrAlreadyExists, "user %s", u.Username)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	data, err := r.client.HGet(ctx, usersKey, username).Result()
	if err == redis.Nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "user %s", username)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user %s from redis", username)
	}

	var u user.User
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal user %s", username)
	}
	return &u, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.HLen(ctx, usersKey).Result()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}
	return int(n), nil
}

var _ user.Repository = (*UserRepository)(nil)
