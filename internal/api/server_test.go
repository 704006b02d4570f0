// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/circleblog/internal/core/interaction"
	"github.com/taibuivan/circleblog/internal/core/post"
	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/blob"
	"github.com/taibuivan/circleblog/internal/platform/config"
	"github.com/taibuivan/circleblog/internal/platform/sec"
	"github.com/taibuivan/circleblog/internal/users/account"
	"github.com/taibuivan/circleblog/internal/users/auth"
	"github.com/taibuivan/circleblog/internal/users/session"
)

const testCookie = "circle_session"

// stubResolver knows a single token.
type stubResolver struct{}

func (stubResolver) ResolveIdentity(_ context.Context, token string) (*sec.Identity, error) {
	switch token {
	case "alice-token":
		return &sec.Identity{UserID: 1, Username: "alice", SessionKey: "k", CSRFToken: "csrf-alice"}, nil
	case "broken":
		return nil, errors.New("redis: connection refused")
	}
	return nil, nil
}

// likesOnly answers toggles on post 7 and nothing else.
type likesOnly struct{ liked bool }

func (l *likesOnly) ToggleLike(_ context.Context, postID, _ int64) (interaction.LikeState, error) {
	if postID != 7 {
		return interaction.LikeState{}, apperr.NotFound("Post")
	}
	l.liked = !l.liked
	count := 0
	if l.liked {
		count = 1
	}
	return interaction.LikeState{Liked: l.liked, LikeCount: count}, nil
}

func (*likesOnly) CreateComment(context.Context, *interaction.Comment) error {
	return apperr.NotFound("Post")
}

func (*likesOnly) FindComment(context.Context, int64) (*interaction.Comment, error) {
	return nil, apperr.NotFound("Comment")
}

func (*likesOnly) DeleteComment(context.Context, int64) error { return apperr.NotFound("Comment") }

func (*likesOnly) ListComments(context.Context, int64) ([]*interaction.Comment, error) {
	return []*interaction.Comment{}, nil
}

func newTestServer(t *testing.T, uploadDir string) http.Handler {
	t.Helper()
	cfg := &config.Config{
		ServerPort:        "0",
		Environment:       "test",
		SessionCookieName: testCookie,
		UploadURLPrefix:   "uploads",
		MaxUploadSize:     1 << 20,
	}
	logger := slog.New(slog.DiscardHandler)
	liveness, readiness := NewHealthHandlers(HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
	}, logger)

	handlers := Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         auth.NewHandler(auth.NewService(nil, nil, nil, 6), session.CookieConfig{Name: testCookie}, time.Hour),
		Account:      account.NewHandler(account.NewService(nil, nil, nil, 6), session.CookieConfig{Name: testCookie}, time.Hour),
		Posts:        post.NewHandler(post.NewService(nil, nil, blob.Policy{}), cfg.MaxUploadSize),
		Interactions: interaction.NewHandler(interaction.NewService(&likesOnly{})),
		UploadDir:    uploadDir,
	}
	return NewServer(cfg, logger, stubResolver{}, handlers).Handler()
}

func send(t *testing.T, handler http.Handler, method, path, body, token string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var payload map[string]any
	_ = json.Unmarshal(recorder.Body.Bytes(), &payload)
	return recorder.Code, payload
}

/*
TestServer_LikeRequiresCSRF drives the full chain: cookie, identity, CSRF, then the toggle.
*/
func TestServer_LikeRequiresCSRF(t *testing.T) {
	handler := newTestServer(t, "")

	status, body := send(t, handler, http.MethodPost, "/api/likes/toggle", `{"post_id":7}`, "alice-token", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "CSRF_MISMATCH", body["code"])

	status, body = send(t, handler, http.MethodPost, "/api/likes/toggle", `{"post_id":7}`, "alice-token",
		map[string]string{"X-CSRF-Token": "wrong"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = send(t, handler, http.MethodPost, "/api/likes/toggle", `{"post_id":7}`, "alice-token",
		map[string]string{"X-CSRF-Token": "csrf-alice"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(1), body["like_count"])
}

func TestServer_AnonymousLikeRejected(t *testing.T) {
	handler := newTestServer(t, "")

	for _, token := range []string{"", "unknown-token"} {
		status, body := send(t, handler, http.MethodPost, "/api/likes/toggle", `{"post_id":7}`, token, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["message"], "login")
	}
}

func TestServer_SessionStoreFailure(t *testing.T) {
	handler := newTestServer(t, "")

	status, body := send(t, handler, http.MethodGet, "/api/posts/7/comments", "", "broken", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body["message"], "redis")
}

func TestServer_CommentsMountedUnderPosts(t *testing.T) {
	handler := newTestServer(t, "")

	status, body := send(t, handler, http.MethodGet, "/api/posts/7/comments", "", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["comments"])
}

func TestServer_AccountRequiresLogin(t *testing.T) {
	handler := newTestServer(t, "")

	status, _ := send(t, handler, http.MethodGet, "/api/account", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := send(t, handler, http.MethodPost, "/api/account/password", `{}`, "alice-token", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "CSRF_MISMATCH", body["code"])
}

func TestServer_HealthAndNotFound(t *testing.T) {
	handler := newTestServer(t, "")

	status, body := send(t, handler, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = send(t, handler, http.MethodGet, "/ready", "", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body = send(t, handler, http.MethodGet, "/nope", "", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestServer_ServesUploads(t *testing.T) {
	directory := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(directory, "cat.png"), []byte("png"), 0o644))
	handler := newTestServer(t, directory)

	request := httptest.NewRequest(http.MethodGet, "/uploads/cat.png", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "png", recorder.Body.String())

	request = httptest.NewRequest(http.MethodGet, "/uploads/", nil)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
