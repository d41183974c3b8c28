package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

var userColumns = []string{"id", "username", "password_hash", "is_admin", "created_at"}

// CreateUser inserts a user, assigning ID and CreatedAt.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	id := repository.NewID()
	createdAt := time.Now().UTC()

	query, args, err := s.builder.
		Insert("users").
		Columns(userColumns...).
		Values(id, user.Username, user.PasswordHash, user.IsAdmin, toUnix(createdAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// GetUserByID looks a user up by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if !repository.ValidID(id) {
		return nil, repository.ErrNotFound
	}
	return s.getUser(ctx, squirrel.Eq{"id": id})
}

// GetUserByUsername looks a user up by username.
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
		return nil, fmt.Errorf("build select user: %w", err)
	}

	var (
		user      model.User
		createdAt int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	user.CreatedAt = fromUnix(createdAt)
	return &user, nil
}
