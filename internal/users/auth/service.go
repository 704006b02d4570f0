// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/ctxutil"
	"github.com/taibuivan/circleblog/internal/platform/sec"
	"github.com/taibuivan/circleblog/internal/platform/validate"
	"github.com/taibuivan/circleblog/internal/users/session"
)

// # Contracts & Types

// SessionManager opens and closes browser sessions.
type SessionManager interface {
	Create(context context.Context, owner session.Owner, previousToken string) (string, *session.Session, error)
	Destroy(context context.Context, token string) error
}

// CSRFIssuer hands out the per-session anti-forgery token.
type CSRFIssuer interface {
	Issue(context context.Context, identity *sec.Identity) (string, error)
}

// Service implements the account use cases.
type Service struct {
	userRepository    UserRepository
	sessions          SessionManager
	csrf              CSRFIssuer
	minPasswordLength int
}

// NewService constructs a new [Service].
//
// minPasswordLength is the signup policy (MIN_PASSWORD_LENGTH).
func NewService(users UserRepository, sessions SessionManager, csrf CSRFIssuer, minPasswordLength int) *Service {
	return &Service{
		userRepository:    users,
		sessions:          sessions,
		csrf:              csrf,
		minPasswordLength: minPasswordLength,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register validates, hashes and persists a new account. It does not log the user in.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: InvalidInput, Conflict (username or email taken) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	username := validate.Text(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" || email == "" || input.Password == "" {
		return nil, validate.Invalid(FieldUsername, msgFieldsMissing)
	}

	validator := &validate.Validator{}
	validator.
		Between(FieldUsername, username, UsernameMinLength, UsernameMaxLength,
			fmt.Sprintf("Username must be between %d and %d characters", UsernameMinLength, UsernameMaxLength)).
		Email(FieldEmail, email).
		MaxLen(FieldEmail, email, EmailMaxLength)
	PasswordRules(validator, FieldPassword, input.Password, service.minPasswordLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
	}

	// Uniqueness is decided by the database, not by a racy pre-check
	if err := service.userRepository.Create(context, user); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_registered", slog.Int64("user_id", user.ID))

	return user, nil
}

// PasswordRules adds the password policy for field to validator.
// minLength counts characters; the upper bound is bcrypt's byte limit.
func PasswordRules(validator *validate.Validator, field, password string, minLength int) *validate.Validator {
	return validator.
		Custom(field, validate.Length(password) < minLength,
			fmt.Sprintf("Password must be at least %d characters", minLength)).
		Custom(field, len(password) > PasswordMaxBytes,
			fmt.Sprintf("Password must be at most %d bytes", PasswordMaxBytes))
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string

	// PreviousToken is the session cookie the browser arrived with, if any.
	PreviousToken string
}

// LoginResult is a freshly established session.
type LoginResult struct {
	Token     string
	CSRFToken string
	User      *User
}

/*
Login verifies credentials and opens a fresh session.

Description: Unknown usernames and wrong passwords produce the same error and
cost the same bcrypt work. On success any token the browser presented is
destroyed and a new one is issued.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Token for the cookie, CSRF token and user
  - error: Unauthenticated (bad credentials), InvalidInput or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {
	username := validate.Text(input.Username)
	if username == "" || input.Password == "" {
		return nil, validate.Invalid(FieldUsername, msgCredentialsMissing)
	}

	user, err := service.userRepository.FindByUsername(context, username)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
		}
		sec.BurnPasswordCheck(input.Password)
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		ctxutil.GetLogger(context).WarnContext(context, "login_failed", slog.Int64("user_id", user.ID))
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	token, created, err := service.sessions.Create(context, session.Owner{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, input.PreviousToken)
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_failed: %w", err)
	}

	csrfToken, err := service.csrf.Issue(context, created.Identity())
	if err != nil {
		_ = service.sessions.Destroy(context, token)
		return nil, fmt.Errorf("auth_service_csrf_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "session_created", slog.Int64("user_id", user.ID))

	return &LoginResult{Token: token, CSRFToken: csrfToken, User: user}, nil
}

/*
Logout destroys the session bound to token. Unknown and empty tokens succeed.
*/
func (service *Service) Logout(context context.Context, token string) error {
	if err := service.sessions.Destroy(context, token); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session View

// SessionView describes the caller for scripts that need the CSRF token.
type SessionView struct {
	Authenticated bool
	User          *PublicUser
	CSRFToken     string
}

/*
Current reports who the caller is and issues the CSRF token if needed.

Returns:
  - *SessionView: Authenticated=false for anonymous callers
  - error: Storage failures
*/
func (service *Service) Current(context context.Context, identity *sec.Identity) (*SessionView, error) {
	if identity == nil {
		return &SessionView{}, nil
	}

	csrfToken, err := service.csrf.Issue(context, identity)
	if err != nil {
		// The session vanished between resolve and issue
		if apperr.Is(err, apperr.KindUnauthenticated) {
			return &SessionView{}, nil
		}
		return nil, err
	}

	return &SessionView{
		Authenticated: true,
		User:          &PublicUser{ID: identity.UserID, Username: identity.Username},
		CSRFToken:     csrfToken,
	}, nil
}
