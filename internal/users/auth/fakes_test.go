// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/sec"
	"github.com/taibuivan/circleblog/internal/users/session"
)

type fakeUsers struct {
	mu      sync.Mutex
	byName  map[string]*User
	nextID  int64
	failing bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]*User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("connection refused")
	}
	for _, existing := range f.byName {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict(msgDuplicateAccount)
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	stored := *user
	f.byName[user.Username] = &stored
	return nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("connection refused")
	}
	user, ok := f.byName[username]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

// fakeSessions records which tokens were destroyed and which are live.
type fakeSessions struct {
	mu        sync.Mutex
	counter   int
	live      map[string]session.Owner
	destroyed []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{live: map[string]session.Owner{}}
}

func (f *fakeSessions) Create(_ context.Context, owner session.Owner, previousToken string) (string, *session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if previousToken != "" {
		delete(f.live, previousToken)
		f.destroyed = append(f.destroyed, previousToken)
	}
	f.counter++
	token := "token-" + string(rune('a'+f.counter))
	f.live[token] = owner
	return token, &session.Session{
		Key:      sec.HashToken(token),
		UserID:   owner.ID,
		Username: owner.Username,
		Role:     owner.Role,
	}, nil
}

func (f *fakeSessions) Destroy(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, token)
	f.destroyed = append(f.destroyed, token)
	return nil
}

type fakeCSRF struct{}

func (fakeCSRF) Issue(_ context.Context, identity *sec.Identity) (string, error) {
	if identity == nil {
		return "", apperr.Unauthenticated("Please login to continue")
	}
	if identity.CSRFToken == "" {
		identity.CSRFToken = "csrf-" + identity.SessionKey[:8]
	}
	return identity.CSRFToken, nil
}

type failingCSRF struct{}

func (failingCSRF) Issue(context.Context, *sec.Identity) (string, error) {
	return "", apperr.Internal(errors.New("redis: connection refused"))
}
