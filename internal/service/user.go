package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carlot/carlot/internal/auth"
	"github.com/carlot/carlot/internal/metrics"
	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

// UserService handles registration and login.
type UserService struct {
	users   repository.UserRepository
	tokens  *auth.TokenIssuer
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, tokens *auth.TokenIssuer, logger *slog.Logger, recorder metrics.Recorder) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		users:   users,
		tokens:  tokens,
		logger:  logger,
		metrics: recorder,
	}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token    string
	Username string
	IsAdmin  bool
}

// Register creates a non-admin user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	return s.create(ctx, username, password, false)
}

// RegisterAdmin creates a user with the admin flag set. It is only reachable
// from operator tooling, never from the HTTP surface.
func (s *UserService) RegisterAdmin(ctx context.Context, username, password string) (*model.User, error) {
	return s.create(ctx, username, password, true)
}

func (s *UserService) create(ctx context.Context, username, password string, isAdmin bool) (*model.User, error) {
	if username == "" {
		return nil, invalid("username", "username is required")
	}
	if password == "" {
		return nil, invalid("password", "password is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.Bool("is_admin", user.IsAdmin),
	)

	return user, nil
}

// Login checks the password and issues a bearer token.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.IncLogin(metrics.LoginUnknownUser)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.metrics.IncLogin(metrics.LoginBadPassword)
		return nil, ErrInvalidPassword
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)

	return &LoginResult{
		Token:    token,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}, nil
}
