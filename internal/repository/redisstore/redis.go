// Package redisstore implements repository.Store on Redis. Documents are
// stored as JSON strings; sorted sets keep insertion order.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carlot/carlot/internal/repository"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "carlot:"

// Store provides Redis document access methods.
type Store struct {
	client *redis.Client
	prefix string
}

var _ repository.Store = (*Store)(nil)

// Open creates a new Store with a Redis client.
func Open(ctx context.Context, redisURL, prefix string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return New(client, prefix), nil
}

// New wraps an existing client. An empty prefix selects DefaultPrefix.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) userKey(id string) string { return s.prefix + "user:" + id }
func (s *Store) usernameKey(username string) string { return s.prefix + "user:username:" + username }
func (s *Store) carKey(id string) string { return s.prefix + "car:" + id }
func (s *Store) carSeqKey() string { return s.prefix + "car:seq" }
func (s *Store) carsKey() string { return s.prefix + "cars" }
func (s *Store) ownerCarsKey(ownerID string) string { return s.prefix + "cars:owner:" + ownerID }
