package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stockadvisor/internal/domain/user"
	"stockadvisor/internal/repository/memory"
	"stockadvisor/pkg/auth"
	pkgerrors "stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// MockUserRepository is a mock for user.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, usr *user.User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-min-32-characters-long", "test", time.Hour)
}

func newService(repo user.Repository) *Service {
	return NewService(repo, newJWT(), logger.Nop()).WithCost(bcrypt.MinCost)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.NewUserRepository())

	require.NoError(t, svc.Register(ctx, "alice", "s3cret"))

	token, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)

	usr, err := svc.Authenticate(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", usr.Username)
	assert.NotEqual(t, "s3cret", usr.PasswordHash)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.NewUserRepository())

	require.NoError(t, svc.Register(ctx, "alice", "one"))
	err := svc.Register(ctx, "alice", "two")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.ErrorIs(t, err, pkgerrors.ErrAlreadyExists)
}

func TestRegisterRequiresFields(t *testing.T) {
	svc := newService(memory.NewUserRepository())

	err := svc.Register(context.Background(), "  ", "pw")
	var verr *pkgerrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.NewUserRepository())
	require.NoError(t, svc.Register(ctx, "alice", "right"))

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong"},
		{"unknown user", "bob", "right"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(ctx, tt.username, tt.password)
			assert.Nil(t, token)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
		})
	}
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	svc := newService(memory.NewUserRepository())

	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := newService(memory.NewUserRepository())
	token, err := newJWT().GenerateToken("ghost")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
}

func TestLoginRepositoryFailure(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, pkgerrors.ErrUnavailable)
	svc := newService(repo)

	_, err := svc.Login(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, pkgerrors.ErrUnavailable)
	assert.NotErrorIs(t, err, pkgerrors.ErrUnauthorized)
	repo.AssertExpectations(t)
}
