// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package csrf issues and verifies the per-session anti-forgery token.

# Model

  - One token per session, written with the session record when it is
    created and never rotated per request. Records stored without one get it
    lazily the first time a page or script asks.
  - Every state-changing request (POST, PUT, PATCH, DELETE) made with an
    authenticated session must echo it, either in the "csrf_token" form field
    or in the X-CSRF-Token header.
  - Anonymous requests are not checked here; the services reject them as
    unauthenticated.
*/
package csrf

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/constants"
	"github.com/taibuivan/circleblog/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/circleblog/internal/platform/request"
	"github.com/taibuivan/circleblog/internal/platform/respond"
	"github.com/taibuivan/circleblog/internal/platform/sec"
	"github.com/taibuivan/circleblog/internal/platform/validate"
)

// TokenStore persists the token on the session record.
//
// SetCSRFIfAbsent must behave like HSETNX so that two concurrent first issues
// converge on a single value. It returns "" when the session no longer exists.
type TokenStore interface {
	SetCSRFIfAbsent(ctx context.Context, sessionKey, token string) (string, error)
}

// Guard issues and verifies tokens.
type Guard struct {
	store TokenStore
}

// NewGuard constructs a [Guard].
func NewGuard(store TokenStore) *Guard {
	return &Guard{store: store}
}

/*
Issue returns the session's token, creating it on first use.

Parameters:
  - ctx: context.Context
  - identity: *sec.Identity (the resolved session; updated in place)

Returns:
  - string: The token to embed in forms or hand to scripts
  - error: Unauthenticated for anonymous callers, Internal on store failure
*/
func (guard *Guard) Issue(ctx context.Context, identity *sec.Identity) (string, error) {
	if identity == nil || identity.SessionKey == "" {
		return "", apperr.Unauthenticated("Please login to continue")
	}
	if identity.CSRFToken != "" {
		return identity.CSRFToken, nil
	}

	candidate, err := sec.GenerateSecureToken(constants.CSRFTokenLength)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("csrf_generate_failed: %w", err))
	}

	effective, err := guard.store.SetCSRFIfAbsent(ctx, identity.SessionKey, candidate)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("csrf_store_failed: %w", err))
	}
	if effective == "" {
		return "", apperr.Unauthenticated("Your session has expired. Please login again")
	}

	identity.CSRFToken = effective
	return effective, nil
}

// Verify compares the submitted token with the session's in constant time.
// A session that was never issued a token matches nothing.
func Verify(identity *sec.Identity, submitted string) error {
	if identity == nil || !sec.ConstantTimeEqual(identity.CSRFToken, submitted) {
		return apperr.CSRFMismatch()
	}
	return nil
}

// # Middleware

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

/*
Submitted extracts the token a request carries: the header first, then the form field.

Form bodies are parsed with maxBody as the limit, so the downstream handler
reuses the parsed form instead of reading the body again.
*/
func Submitted(writer http.ResponseWriter, request *http.Request, maxBody int64) (string, error) {
	if token := request.Header.Get(constants.HeaderCSRFToken); token != "" {
		return token, nil
	}

	if !requestutil.IsForm(request) {
		return "", nil
	}

	request.Body = http.MaxBytesReader(writer, request.Body, maxBody)
	if err := requestutil.ParseForm(request, maxBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", validate.Invalid("body", fmt.Sprintf("Request too large. Max size: %dMB", maxBody>>20))
		}
		return "", validate.Invalid("body", "Invalid form submission")
	}

	return request.PostForm.Get(constants.CSRFFormField), nil
}

// Protect rejects state-changing requests from authenticated sessions whose
// token is absent or wrong.
func Protect(maxBody int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())
			if isSafeMethod(request.Method) || identity == nil {
				next.ServeHTTP(writer, request)
				return
			}

			submitted, err := Submitted(writer, request, maxBody)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			if err := Verify(identity, submitted); err != nil {
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "csrf_rejected")
				respond.Error(writer, request, err)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
