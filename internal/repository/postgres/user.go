package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

var userColumns = []string{"id", "username", "password_hash", "is_admin", "created_at"}

// CreateUser inserts a new user. ID and CreatedAt are assigned here.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	id := repository.NewID()
	createdAt := time.Now().UTC()

	query, args, err := s.builder.
		Insert("users").
		Columns(userColumns...).
		Values(id, user.Username, user.PasswordHash, user.IsAdmin, createdAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if !repository.ValidID(id) {
		return nil, repository.ErrNotFound
	}
	return s.getUser(ctx, squirrel.Eq{"id": id})
}

// GetUserByUsername retrieves a user by their username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx, squirrel.Eq{"username": username})
}

func (s *Store) getUser(ctx context.Context, where squirrel.Eq) (*model.User, error) {
	query, args, err := s.builder.
		Select(userColumns...).
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	var user model.User
	err = s.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
