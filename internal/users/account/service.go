// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/circleblog/internal/platform/authz"
	"github.com/taibuivan/circleblog/internal/platform/ctxutil"
	"github.com/taibuivan/circleblog/internal/platform/sec"
	"github.com/taibuivan/circleblog/internal/platform/validate"
	"github.com/taibuivan/circleblog/internal/users/auth"
	"github.com/taibuivan/circleblog/internal/users/session"
)

// # Service Layer

// Service orchestrates the account use cases.
type Service struct {
	accountRepository Repository
	sessions          auth.SessionManager
	csrf              auth.CSRFIssuer
	minPasswordLength int
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, sessions auth.SessionManager, csrf auth.CSRFIssuer, minPasswordLength int) *Service {
	return &Service{
		accountRepository: repository,
		sessions:          sessions,
		csrf:              csrf,
		minPasswordLength: minPasswordLength,
	}
}

// # Profile

/*
Profile returns the caller's account summary.

Parameters:
  - context: context.Context
  - identity: *sec.Identity

Returns:
  - *Profile: The hydrated profile
  - error: Unauthenticated, NotFound or storage failures
*/
func (service *Service) Profile(context context.Context, identity *sec.Identity) (*Profile, error) {
	userID, err := authz.RequireAuthenticated(identity, msgLoginRequired)
	if err != nil {
		return nil, err
	}

	profile, err := service.accountRepository.FindProfile(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return profile, nil
}

// # Password

// ChangePasswordInput carries the password change form.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string

	// SessionToken is the cookie of the session performing the change.
	SessionToken string
}

// ChangePasswordResult is the session that replaces the caller's old one.
type ChangePasswordResult struct {
	Token     string
	CSRFToken string
}

/*
ChangePassword replaces the caller's password after checking the current one.

Description: On success the session is regenerated. The old token is
destroyed and a fresh token and CSRF token are returned, the same way a login
does.

Returns:
  - *ChangePasswordResult: New session token and CSRF token
  - error: Unauthenticated, InvalidInput or storage failures
*/
func (service *Service) ChangePassword(context context.Context, identity *sec.Identity, input ChangePasswordInput) (*ChangePasswordResult, error) {
	userID, err := authz.RequireAuthenticated(identity, msgLoginRequired)
	if err != nil {
		return nil, err
	}

	if input.CurrentPassword == "" || input.NewPassword == "" {
		return nil, validate.Invalid(FieldNewPassword, msgFieldsMissing)
	}

	validator := &validate.Validator{}
	auth.PasswordRules(validator, FieldNewPassword, input.NewPassword, service.minPasswordLength).
		Custom(FieldNewPassword, input.NewPassword == input.CurrentPassword, msgUnchangedSecret)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	storedHash, err := service.accountRepository.PasswordHash(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_password_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.CurrentPassword, storedHash) {
		ctxutil.GetLogger(context).WarnContext(context, "password_change_rejected")
		return nil, validate.Invalid(FieldCurrentPassword, msgWrongPassword)
	}

	newHash, err := sec.HashPassword(input.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	if err := service.accountRepository.UpdatePasswordHash(context, userID, newHash); err != nil {
		return nil, fmt.Errorf("account_service_password_update_failed: %w", err)
	}

	token, created, err := service.sessions.Create(context, ownerOf(identity), input.SessionToken)
	if err != nil {
		return nil, fmt.Errorf("account_service_session_failed: %w", err)
	}

	csrfToken, err := service.csrf.Issue(context, created.Identity())
	if err != nil {
		_ = service.sessions.Destroy(context, token)
		return nil, fmt.Errorf("account_service_csrf_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "password_changed", slog.Int64("user_id", userID))

	return &ChangePasswordResult{Token: token, CSRFToken: csrfToken}, nil
}

func ownerOf(identity *sec.Identity) session.Owner {
	return session.Owner{ID: identity.UserID, Username: identity.Username, Role: identity.Role}
}
