package auth

import (
	"context"
	"errors"
	"fmt"

	"device-registry/internal/config"
	"device-registry/internal/storage"

	"go.uber.org/zap"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyCredentials   = errors.New("username and password must not be empty")
)

// UserStore is the slice of the persistence layer the auth service needs.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*storage.User, error)
	GetUserByCredentials(ctx context.Context, username, password string) (*storage.User, error)
	CreateUser(ctx context.Context, username, password, role string) (*storage.User, error)
	HasUserWithRole(ctx context.Context, role string) (bool, error)
}

type Service struct {
	store      UserStore
	jwtHandler *JWTHandler
	logger     *zap.Logger
}

func NewService(store UserStore, cfg config.JWTConfig, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		jwtHandler: NewJWTHandler(cfg.GetSecret(), cfg.Issuer, cfg.Audience, cfg.TokenTTL),
		logger:     logger,
	}
}

// Register creates a new user with role fixed to "User". The uniqueness
// check is a lookup, not a constraint: two concurrent registrations with the
// same username can both pass it. Documented behavior, kept as-is.
func (s *Service) Register(ctx context.Context, username, password string) (*storage.User, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, password, storage.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("username", username))
	return user, nil
}

// Login matches the stored username and plaintext password exactly and
// issues a signed bearer token. No rate limiting, no lockout.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info("Login failed", zap.String("username", username))
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.jwtHandler.GenerateToken(user.Username, user.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return token, nil
}

// ValidateToken is used by the HTTP middleware and the WebSocket hub.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.jwtHandler.ValidateToken(tokenString)
}

// EnsureAdmin creates the default admin account if no admin user exists yet.
// One-time seeding on startup.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	exists, err := s.store.HasUserWithRole(ctx, storage.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := s.store.CreateUser(ctx, cfg.AdminUsername, cfg.AdminPassword, storage.RoleAdmin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Info("Default admin user created", zap.String("username", cfg.AdminUsername))
	return nil
}
