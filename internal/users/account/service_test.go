// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/sec"
	"github.com/taibuivan/circleblog/internal/users/session"
)

type fakeRepository struct {
	mu       sync.Mutex
	profiles map[int64]*Profile
	hashes   map[int64]string
}

func newFakeRepository(t *testing.T, password string) *fakeRepository {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return &fakeRepository{
		profiles: map[int64]*Profile{1: {ID: 1, Username: "alice", Email: "alice@example.com", Role: sec.RoleUser, PostCount: 2}},
		hashes:   map[int64]string{1: hash},
	}
}

func (f *fakeRepository) FindProfile(_ context.Context, userID int64) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeRepository) PasswordHash(_ context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.hashes[userID]
	if !ok {
		return "", apperr.NotFound("User")
	}
	return hash, nil
}

func (f *fakeRepository) UpdatePasswordHash(_ context.Context, userID int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hashes[userID] = hash
	return nil
}

// rotatingSessions remembers the token handed in for destruction.
type rotatingSessions struct {
	replaced  []string
	destroyed []string
}

func (r *rotatingSessions) Create(_ context.Context, owner session.Owner, previousToken string) (string, *session.Session, error) {
	r.replaced = append(r.replaced, previousToken)
	return "fresh-token", &session.Session{Key: sec.HashToken("fresh-token"), UserID: owner.ID, Username: owner.Username, Role: owner.Role}, nil
}

func (r *rotatingSessions) Destroy(_ context.Context, token string) error {
	r.destroyed = append(r.destroyed, token)
	return nil
}

type fixedCSRF struct{}

func (fixedCSRF) Issue(_ context.Context, identity *sec.Identity) (string, error) {
	identity.CSRFToken = "csrf-fresh"
	return identity.CSRFToken, nil
}

type failingCSRF struct{}

func (failingCSRF) Issue(context.Context, *sec.Identity) (string, error) {
	return "", apperr.Internal(errors.New("redis: connection refused"))
}

var alice = &sec.Identity{UserID: 1, Username: "alice", Role: sec.RoleUser, SessionKey: "old"}

func TestProfile(t *testing.T) {
	service := NewService(newFakeRepository(t, "secret1"), &rotatingSessions{}, fixedCSRF{}, 6)

	profile, err := service.Profile(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 2, profile.PostCount)

	_, err = service.Profile(context.Background(), nil)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestChangePassword_Validation(t *testing.T) {
	service := NewService(newFakeRepository(t, "secret1"), &rotatingSessions{}, fixedCSRF{}, 8)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   ChangePasswordInput
		message string
	}{
		{"missing", ChangePasswordInput{CurrentPassword: "secret1"}, "All fields are required"},
		{"too_short", ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "short"}, "Password must be at least 8 characters"},
		{"unchanged", ChangePasswordInput{CurrentPassword: "secret12", NewPassword: "secret12"}, "New password must be different from the current password"},
		{"wrong_current", ChangePasswordInput{CurrentPassword: "guess123", NewPassword: "brand-new-1"}, "Current password is incorrect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ChangePassword(ctx, alice, tt.input)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
			assert.Equal(t, tt.message, apperr.As(err).Message)
		})
	}

	_, err := service.ChangePassword(ctx, nil, ChangePasswordInput{CurrentPassword: "a", NewPassword: "b"})
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

/*
TestChangePassword_RotatesSession checks that the new hash is stored and the old cookie is replaced.
*/
func TestChangePassword_RotatesSession(t *testing.T) {
	repository := newFakeRepository(t, "secret1")
	sessions := &rotatingSessions{}
	service := NewService(repository, sessions, fixedCSRF{}, 6)

	result, err := service.ChangePassword(context.Background(), alice, ChangePasswordInput{
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
		SessionToken:    "old-cookie",
	})
	require.NoError(t, err)

	assert.Equal(t, "fresh-token", result.Token)
	assert.Equal(t, "csrf-fresh", result.CSRFToken)
	assert.Equal(t, []string{"old-cookie"}, sessions.replaced)
	assert.True(t, sec.CheckPasswordHash("secret2", repository.hashes[1]))
	assert.False(t, sec.CheckPasswordHash("secret1", repository.hashes[1]))
}

/*
TestChangePassword_IssueFailureDropsNewSession checks that a session whose CSRF
token could not be issued does not outlive the failed request.
*/
func TestChangePassword_IssueFailureDropsNewSession(t *testing.T) {
	sessions := &rotatingSessions{}
	service := NewService(newFakeRepository(t, "secret1"), sessions, failingCSRF{}, 6)

	_, err := service.ChangePassword(context.Background(), alice, ChangePasswordInput{
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
		SessionToken:    "old-cookie",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, []string{"fresh-token"}, sessions.destroyed)
}
