// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/circleblog/internal/platform/middleware"
	requestutil "github.com/taibuivan/circleblog/internal/platform/request"
	"github.com/taibuivan/circleblog/internal/platform/respond"
	"github.com/taibuivan/circleblog/internal/users/session"
)

// Handler implements the HTTP layer for the caller's account.
type Handler struct {
	accountService *Service
	cookie         session.CookieConfig
	sessionTTL     time.Duration
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, cookie session.CookieConfig, sessionTTL time.Duration) *Handler {
	return &Handler{accountService: service, cookie: cookie, sessionTTL: sessionTTL}
}

// Routes returns a [chi.Router] for /api/account. Every endpoint requires a session.
//
// # Endpoints
//   - GET  /          : Profile with post, comment and like counters.
//   - POST /password  : Change password; rotates the session cookie.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.profile)
	router.Post("/password", handler.changePassword)

	return router
}

// GET /api/account
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.accountService.Profile(request.Context(), requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "", respond.Fields{FieldProfile: profile})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (body *changePasswordRequest) DecodeForm(values url.Values) {
	body.CurrentPassword = values.Get(FieldCurrentPassword)
	body.NewPassword = values.Get(FieldNewPassword)
}

/*
POST /api/account/password

Response:
  - 200: {success, message, csrf_token} + Set-Cookie with the new session
  - 400: Policy violation or wrong current password
  - 401: Not logged in
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	var input changePasswordRequest
	if err := requestutil.Decode(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.accountService.ChangePassword(request.Context(), requestutil.Identity(request), ChangePasswordInput{
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
		SessionToken:    handler.cookie.ReadToken(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookie.Write(writer, result.Token, handler.sessionTTL)

	respond.OK(writer, "Password updated successfully", respond.Fields{FieldCSRFToken: result.CSRFToken})
}
