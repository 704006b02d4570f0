// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the credential store and the account entry points:
registration, login, logout and the current-session view.

# Architecture

  - Repository: users table in PostgreSQL (unique username and email).
  - Service: password policy, bcrypt verification, session issue via the
    session manager, first CSRF token issue.
  - Handler: JSON or form bodies, session cookie transport.
*/
package auth

import (
	"time"

	"github.com/taibuivan/circleblog/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member.
type User struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
}

// PublicUser is the subset of a user returned to the browser.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Public projects the user onto its client-visible fields.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

// # Field Identifiers

const (
	FieldUsername      = "username"
	FieldEmail         = "email"
	FieldPassword      = "password"
	FieldUser          = "user"
	FieldCSRFToken     = "csrf_token"
	FieldAuthenticated = "authenticated"
)

// # Account Rules

const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
	EmailMaxLength    = 255

	// PasswordMaxBytes is bcrypt's input limit.
	PasswordMaxBytes = 72
)

// Client-facing messages.
const (
	msgInvalidCredentials = "Invalid username or password"
	msgCredentialsMissing = "Both username and password are required"
	msgFieldsMissing      = "All fields are required"
	msgDuplicateAccount   = "Username or email already exists"
)
