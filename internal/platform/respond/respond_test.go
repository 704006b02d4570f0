// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/respond"
	"github.com/taibuivan/circleblog/pkg/pagination"
)

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestOK_FlatEnvelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, "Post liked!", respond.Fields{"liked": true, "like_count": 1, "success": false})

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decode(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Post liked!", body["message"])
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(1), body["like_count"])
}

func TestPaginated(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Paginated(recorder, "posts", []string{"a"}, pagination.NewMeta(1, 20, 1))

	body := decode(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["posts"], 1)
	assert.Equal(t, float64(1), body["meta"].(map[string]any)["total_pages"])
}

/*
TestError_Mapping checks status codes and that internal causes never leak.
*/
func TestError_Mapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"csrf", apperr.CSRFMismatch(), http.StatusForbidden, "CSRF_MISMATCH", "Invalid security token"},
		{"unauthenticated", apperr.Unauthenticated("Please login to like posts"), http.StatusUnauthorized, "UNAUTHENTICATED", "Please login to like posts"},
		{"not_found", apperr.NotFound("Post"), http.StatusNotFound, "NOT_FOUND", "Post not found"},
		{"raw_error", errors.New("pq: relation \"posts\" does not exist"), http.StatusInternalServerError, "INTERNAL_ERROR", "An error occurred. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/", nil)
			respond.Error(recorder, request, tt.err)

			assert.Equal(t, tt.status, recorder.Code)
			body := decode(t, recorder)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.message, body["message"])
			assert.NotContains(t, recorder.Body.String(), "relation")
		})
	}
}
