// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/authz"
	"github.com/taibuivan/circleblog/internal/platform/ctxutil"
	"github.com/taibuivan/circleblog/internal/platform/respond"
	"github.com/taibuivan/circleblog/internal/platform/sec"
)

// IdentityResolver maps a session token to the caller. A nil identity means anonymous.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*sec.Identity, error)
}

// Authenticate resolves the session cookie into a [*sec.Identity] on the context.
//
// # Flow
//  1. No cookie, or a token that resolves to nothing: proceed as anonymous.
//  2. Store failure: respond 500 rather than silently downgrading the caller.
//  3. Otherwise inject the identity, and tag the request logger with user_id.
func Authenticate(resolver IdentityResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			cookie, err := request.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			identity, err := resolver.ResolveIdentity(request.Context(), cookie.Value)
			if err != nil {
				ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "session_resolve_failed",
					slog.Any("error", err),
				)
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			if identity == nil {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithIdentity(request.Context(), identity)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.Int64("user_id", identity.UserID)))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks anonymous requests with 401.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if _, err := authz.RequireAuthenticated(ctxutil.GetIdentity(request.Context()), ""); err != nil {
			respond.Error(writer, request, err)
			return
		}
		next.ServeHTTP(writer, request)
	})
}
