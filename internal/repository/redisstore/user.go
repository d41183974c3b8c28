package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

// userDoc is the stored form of a user. Unlike model.User it keeps the hash.
type userDoc struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUser claims the username index with SETNX, then writes the document.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	doc := userDoc{
		ID:           repository.NewID(),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	claimed, err := s.client.SetNX(ctx, s.usernameKey(doc.Username), doc.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve username: %w", err)
	}
	if !claimed {
		return repository.ErrDuplicate
	}

	if err := s.client.Set(ctx, s.userKey(doc.ID), data, 0).Err(); err != nil {
		// release the reservation so the name is not lost
		_ = s.client.Del(ctx, s.usernameKey(doc.Username)).Err()
		return fmt.Errorf("failed to store user: %w", err)
	}

	user.ID = doc.ID
	user.CreatedAt = doc.CreatedAt
	return nil
}

// GetUserByID retrieves a user document.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if !repository.ValidID(id) {
		return nil, repository.ErrNotFound
	}

	data, err := s.client.Get(ctx, s.userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var doc userDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &model.User{
		ID:           doc.ID,
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		IsAdmin:      doc.IsAdmin,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

// GetUserByUsername resolves the username index, then loads the document.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	id, err := s.client.Get(ctx, s.usernameKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve username: %w", err)
	}

	return s.GetUserByID(ctx, id)
}
