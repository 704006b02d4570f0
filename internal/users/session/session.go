// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session owns the binding between an opaque browser token and a user.

# Architecture

  - Client half: a random token carried in an HTTP-only cookie.
  - Server half: a record keyed by SHA-256(token) in Redis, with a TTL.
  - One active session per user: a login displaces the user's previous session
    and any token the browser presented, which defeats session fixation.

An absent, unknown or expired token resolves to "anonymous" and is never an error.
*/
package session

import (
	"context"
	"time"

	"github.com/taibuivan/circleblog/internal/platform/sec"
)

// # Domain Entities

// Session is the server-side half of an authenticated browser session.
type Session struct {
	// Key is SHA-256(token). The raw token is never stored.
	Key               string
	UserID            int64
	Username          string
	Role              sec.UserRole
	CSRFToken         string
	CreatedAt         time.Time
	LastRegeneratedAt time.Time
	ExpiresAt         time.Time
}

// Owner is the minimal user view needed to open a session.
type Owner struct {
	ID       int64
	Username string
	Role     sec.UserRole
}

// Identity converts the session into the request-scoped caller identity.
func (s *Session) Identity() *sec.Identity {
	if s == nil {
		return nil
	}
	return &sec.Identity{
		UserID:     s.UserID,
		Username:   s.Username,
		Role:       s.Role,
		SessionKey: s.Key,
		CSRFToken:  s.CSRFToken,
	}
}

// # Data Access

// Store persists session bindings.
type Store interface {

	/*
		Save writes the session record with an expiry of ttl.

		Returns:
		  - error: Persistence failures
	*/
	Save(context context.Context, session *Session, ttl time.Duration) error

	/*
		Find returns the session stored under key.

		Returns:
		  - *Session: nil when the key is absent or expired
		  - error: Storage failures only
	*/
	Find(context context.Context, key string) (*Session, error)

	/*
		Delete removes the session stored under key. Missing keys are not an error.
	*/
	Delete(context context.Context, key string) error

	/*
		SwapUserSession atomically records key as the user's active session and
		returns the key it replaced ("" if none).
	*/
	SwapUserSession(context context.Context, userID int64, key string, ttl time.Duration) (string, error)

	/*
		SetCSRFIfAbsent stores token as the session's CSRF value unless one
		already exists, and returns the value now in effect.

		Returns:
		  - string: Effective token ("" when the session no longer exists)
		  - error: Storage failures
	*/
	SetCSRFIfAbsent(context context.Context, key, token string) (string, error)
}
