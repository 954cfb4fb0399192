package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"stockadvisor/internal/domain/user"
	"stockadvisor/pkg/auth"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "incorrect username or password")
	// ErrUsernameTaken is returned when registering an existing username
	ErrUsernameTaken = errors.Wrap(errors.ErrAlreadyExists, "username already registered")
)

// Service handles registration, login and token checks (Application Layer)
type Service struct {
	userRepo   user.Repository
	jwtService *auth.JWTService
	cost       int
	log        *logger.Logger
}

// NewService creates a new auth service
func NewService(userRepo user.Repository, jwtService *auth.JWTService, log *logger.Logger) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtService: jwtService,
		cost:       bcrypt.DefaultCost,
		log:        log.With("service", "auth"),
	}
}

// WithCost overrides the bcrypt cost, mainly to keep tests fast.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// Token is an issued bearer token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return errors.NewValidationError("username", "username and password are required", username)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	usr := &user.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, usr); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return ErrUsernameTaken
		}
		return errors.Wrap(err, "failed to create user")
	}

	s.log.Infow("User registered", "username", username)
	return nil
}

// Login verifies the password and issues a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	usr, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "failed to get user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		s.log.Debugw("Failed login attempt", "username", username)
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(usr.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate token")
	}

	s.log.Infow("User logged in", "username", usr.Username)
	return &Token{AccessToken: token, TokenType: "bearer"}, nil
}

// Authenticate validates a bearer token and loads its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, err.Error())
	}

	usr, err := s.userRepo.GetByUsername(ctx, claims.Username())
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "user no longer exists")
		}
		return nil, errors.Wrap(err, "failed to get user")
	}
	return usr, nil
}
