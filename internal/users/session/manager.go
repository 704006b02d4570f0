// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/circleblog/internal/platform/constants"
	"github.com/taibuivan/circleblog/internal/platform/sec"
)

// Manager creates, resolves and destroys sessions.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager constructs a [Manager] issuing sessions that live for ttl.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// TTL returns the configured session lifetime (used for the cookie expiry).
func (manager *Manager) TTL() time.Duration {
	return manager.ttl
}

/*
Create opens a fresh session for owner and returns its token.

Description: previousToken (the cookie the browser arrived with, possibly
anonymous or attacker-planted) is destroyed first, and any earlier session of
the same user is displaced, so no pre-login token survives a login. The CSRF
token is generated here and written with the record, so a returned session is
always ready to hand its token to the client.

Parameters:
  - context: context.Context
  - owner: Owner
  - previousToken: string (may be empty)

Returns:
  - string: Raw token for the cookie
  - *Session: Stored record
  - error: Token generation or storage failures
*/
func (manager *Manager) Create(context context.Context, owner Owner, previousToken string) (string, *Session, error) {

	// Fixation defense: never carry a pre-login token across the privilege change
	if previousToken != "" {
		if err := manager.store.Delete(context, sec.HashToken(previousToken)); err != nil {
			return "", nil, fmt.Errorf("session_manager_drop_previous_failed: %w", err)
		}
	}

	token, err := sec.GenerateSecureToken(constants.SessionTokenLength)
	if err != nil {
		return "", nil, fmt.Errorf("session_manager_token_failed: %w", err)
	}

	csrfToken, err := sec.GenerateSecureToken(constants.CSRFTokenLength)
	if err != nil {
		return "", nil, fmt.Errorf("session_manager_csrf_failed: %w", err)
	}

	now := manager.now()
	session := &Session{
		Key:               sec.HashToken(token),
		UserID:            owner.ID,
		Username:          owner.Username,
		Role:              owner.Role,
		CSRFToken:         csrfToken,
		CreatedAt:         now,
		LastRegeneratedAt: now,
		ExpiresAt:         now.Add(manager.ttl),
	}

	if err := manager.store.Save(context, session, manager.ttl); err != nil {
		return "", nil, fmt.Errorf("session_manager_save_failed: %w", err)
	}

	// Displace the user's previous session, if any
	replaced, err := manager.store.SwapUserSession(context, owner.ID, session.Key, manager.ttl)
	if err != nil {
		_ = manager.store.Delete(context, session.Key)
		return "", nil, fmt.Errorf("session_manager_swap_failed: %w", err)
	}

	if replaced != "" && replaced != session.Key {
		if err := manager.store.Delete(context, replaced); err != nil {
			return "", nil, fmt.Errorf("session_manager_drop_replaced_failed: %w", err)
		}
	}

	return token, session, nil
}

/*
Resolve looks up the session bound to token.

Returns:
  - *Session: nil for an empty, unknown or expired token
  - error: Storage failures only
*/
func (manager *Manager) Resolve(context context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	key := sec.HashToken(token)
	session, err := manager.store.Find(context, key)
	if err != nil {
		return nil, fmt.Errorf("session_manager_find_failed: %w", err)
	}

	if session == nil {
		return nil, nil
	}

	// Redis TTL normally removes it first; the stored deadline is authoritative.
	if !manager.now().Before(session.ExpiresAt) {
		_ = manager.store.Delete(context, key)
		return nil, nil
	}

	return session, nil
}

// ResolveIdentity is [Manager.Resolve] projected onto the request identity.
func (manager *Manager) ResolveIdentity(context context.Context, token string) (*sec.Identity, error) {
	session, err := manager.Resolve(context, token)
	if err != nil {
		return nil, err
	}
	return session.Identity(), nil
}

/*
Destroy removes the binding for token. Destroying an unknown or empty token
succeeds, so logout is idempotent.
*/
func (manager *Manager) Destroy(context context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := manager.store.Delete(context, sec.HashToken(token)); err != nil {
		return fmt.Errorf("session_manager_destroy_failed: %w", err)
	}
	return nil
}

// SetCSRFIfAbsent delegates to the store so the CSRF guard can issue lazily.
func (manager *Manager) SetCSRFIfAbsent(context context.Context, sessionKey, token string) (string, error) {
	return manager.store.SetCSRFIfAbsent(context, sessionKey, token)
}
