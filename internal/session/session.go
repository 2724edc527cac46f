// Package session holds the explicit, injected session context: who the user
// is, their bearer credential, and the cached cart count for the navbar
// badge. Nothing here is durable; everything is rebuilt from the remote
// services when it expires.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session is the per-browser session context. A missing bearer credential is
// "no user": the flows still run against a fixed default user id instead of
// failing outright.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists sessions and per-user cart counts for the lifetime of a
// session, with TTL-based expiry.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error

	GetCartCount(ctx context.Context, userID string) (int, error)
	SetCartCount(ctx context.Context, userID string, count int) error
}
