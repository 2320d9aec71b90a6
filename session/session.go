// Package session keeps login sessions in Redis, keyed by an opaque
// token carried in a cookie. Logout deletes the key, so revocation is
// immediate.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// CookieName is the cookie that carries the session token.
const CookieName = "session"

// ErrNotFound means the token is unknown or expired.
var ErrNotFound = errors.New("session: not found")

// Store issues and resolves session tokens.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore is constructor.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(token string) string {
	return "session:" + token
}

// Create issues a fresh token for userID.
func (s *Store) Create(ctx context.Context, userID uint) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, key(token), uint64(userID), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get resolves a token to the user it identifies.
func (s *Store) Get(ctx context.Context, token string) (uint, error) {
	id, err := s.rdb.Get(ctx, key(token)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load session: %w", err)
	}
	return uint(id), nil
}

// Delete revokes a token. Deleting an unknown token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
