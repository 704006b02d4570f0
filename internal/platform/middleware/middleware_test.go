// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/circleblog/internal/platform/config"
	"github.com/taibuivan/circleblog/internal/platform/constants"
	"github.com/taibuivan/circleblog/internal/platform/ctxutil"
	"github.com/taibuivan/circleblog/internal/platform/middleware"
	"github.com/taibuivan/circleblog/internal/platform/sec"
)

type stubResolver struct {
	identities map[string]*sec.Identity
	err        error
}

func (s stubResolver) ResolveIdentity(_ context.Context, token string) (*sec.Identity, error) {
	return s.identities[token], s.err
}

type stubConfig struct {
	dev     bool
	origins []string
}

func (c stubConfig) IsDevelopment() bool      { return c.dev }
func (c stubConfig) AllowedOrigins() []string { return c.origins }

func captureIdentity(seen **sec.Identity) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*seen = ctxutil.GetIdentity(request.Context())
		writer.WriteHeader(http.StatusNoContent)
	})
}

/*
TestAuthenticate covers anonymous, unknown, valid and failing lookups.
*/
func TestAuthenticate(t *testing.T) {
	alice := &sec.Identity{UserID: 1, Username: "alice"}
	resolver := stubResolver{identities: map[string]*sec.Identity{"good": alice}}

	tests := []struct {
		name   string
		cookie string
		want   *sec.Identity
	}{
		{"no_cookie", "", nil},
		{"unknown_token", "stale", nil},
		{"valid_token", "good", alice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *sec.Identity
			handler := middleware.Authenticate(resolver, "circle_session")(captureIdentity(&seen))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: "circle_session", Value: tt.cookie})
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusNoContent, recorder.Code)
			assert.Equal(t, tt.want, seen)
		})
	}

	t.Run("store_failure", func(t *testing.T) {
		var seen *sec.Identity
		failing := stubResolver{err: errors.New("redis down")}
		handler := middleware.Authenticate(failing, "circle_session")(captureIdentity(&seen))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: "circle_session", Value: "good"})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.NotContains(t, recorder.Body.String(), "redis")
	})
}

func TestRequireAuth(t *testing.T) {
	var seen *sec.Identity
	handler := middleware.RequireAuth(captureIdentity(&seen))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithIdentity(request.Context(), &sec.Identity{UserID: 3}))
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "upstream-id")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "upstream-id", seen)
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success":false`)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) })
	handler := middleware.CORS(stubConfig{origins: []string{"https://circle.example"}})(next)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Origin", "https://circle.example")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "https://circle.example", recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Origin", "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest(http.MethodOptions, "/", nil)
	request.Header.Set("Origin", "https://circle.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func corsHeaders(handler http.Handler, origin string) http.Header {
	request := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	request.Header.Set("Origin", origin)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder.Header()
}

/*
TestCORS_DefaultConfig loads the configuration with nothing but the required
URLs set: an unlisted origin must not be allowed to read credentialed responses.
*/
func TestCORS_DefaultConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/circle")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	for _, name := range []string{"ENVIRONMENT", "EXTRA_ORIGINS"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) })
	handler := middleware.CORS(cfg)(next)

	for _, origin := range []string{"https://evil.example", "http://localhost:5173"} {
		header := corsHeaders(handler, origin)
		assert.Empty(t, header.Get("Access-Control-Allow-Origin"), origin)
		assert.Empty(t, header.Get("Access-Control-Allow-Credentials"), origin)
	}
}

func TestCORS_DevelopmentLoopbackOnly(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) })
	handler := middleware.CORS(stubConfig{dev: true})(next)

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:5173", true},
		{"http://127.0.0.1:3000", true},
		{"http://[::1]:8080", true},
		{"https://evil.example", false},
		{"http://localhost.evil.example", false},
		{"null", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			header := corsHeaders(handler, tt.origin)
			if tt.allowed {
				assert.Equal(t, tt.origin, header.Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", header.Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, header.Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.5:4000"
	assert.Equal(t, "10.0.0.5", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", middleware.RealIP(request))
}
