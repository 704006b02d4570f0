// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the signed-in member's own account: the profile
summary and the password change.

# Architecture

  - Domain: This package depends on the auth package for the password policy.
  - Security: Changing the password regenerates the session, so a token
    captured before the change stops working.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/circleblog/internal/platform/sec"
)

// # Domain Entities

// Profile is the caller's private account view with authoring statistics.
type Profile struct {
	ID            int64        `json:"id"`
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	Role          sec.UserRole `json:"role"`
	CreatedAt     time.Time    `json:"created_at"`
	PostCount     int          `json:"post_count"`
	CommentCount  int          `json:"comment_count"`
	LikesReceived int          `json:"likes_received"`
}

// # Repository Contracts

// Repository defines the persistence contract for account data.
type Repository interface {
	/*
		FindProfile loads the account and its counters.

		Returns:
		  - *Profile: Hydrated profile
		  - error: apperr.NotFound or storage failures
	*/
	FindProfile(context context.Context, userID int64) (*Profile, error)

	// PasswordHash returns the stored bcrypt hash.
	PasswordHash(context context.Context, userID int64) (string, error)

	// UpdatePasswordHash replaces the stored hash. The only mutable user column.
	UpdatePasswordHash(context context.Context, userID int64, hash string) error
}

// # Field Identifiers

const (
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldProfile         = "profile"
	FieldCSRFToken       = "csrf_token"
)

const (
	msgLoginRequired   = "Please login to manage your account"
	msgFieldsMissing   = "All fields are required"
	msgWrongPassword   = "Current password is incorrect"
	msgUnchangedSecret = "New password must be different from the current password"
)
