// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/circleblog/internal/platform/request"
	"github.com/taibuivan/circleblog/internal/platform/respond"
	"github.com/taibuivan/circleblog/internal/users/session"
)

// # Definitions & Constructors

// Handler implements the account HTTP endpoints.
type Handler struct {
	authService *Service
	cookie      session.CookieConfig
	sessionTTL  time.Duration
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, cookie session.CookieConfig, sessionTTL time.Duration) *Handler {
	return &Handler{authService: service, cookie: cookie, sessionTTL: sessionTTL}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /login    : Opens a session and sets the cookie.
//   - POST /logout   : Destroys the session; idempotent.
//   - GET  /session  : Current user and CSRF token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/session", handler.current)

	return router
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (body *registerRequest) DecodeForm(values url.Values) {
	body.Username = values.Get(FieldUsername)
	body.Email = values.Get(FieldEmail)
	body.Password = values.Get(FieldPassword)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (body *loginRequest) DecodeForm(values url.Values) {
	body.Username = values.Get(FieldUsername)
	body.Password = values.Get(FieldPassword)
}

/*
Register handles the creation of a new user account.

POST /api/auth/register

Response:
  - 201: {success, message, user}
  - 400: Validation failure
  - 409: Username or email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.Decode(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Account created successfully! You can now log in.", respond.Fields{
		FieldUser: user.Public(),
	})
}

/*
Login authenticates a user and establishes a session.

POST /api/auth/login

Description: The cookie the browser arrived with is handed to the service so
it is destroyed rather than promoted.

Response:
  - 200: {success, message, user:{id, username}, csrf_token} + Set-Cookie
  - 401: Invalid username or password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.Decode(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Username:      input.Username,
		Password:      input.Password,
		PreviousToken: handler.cookie.ReadToken(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookie.Write(writer, result.Token, handler.sessionTTL)

	respond.OK(writer, "Login successful", respond.Fields{
		FieldUser:      result.User.Public(),
		FieldCSRFToken: result.CSRFToken,
	})
}

/*
Logout terminates the current session.

POST /api/auth/logout

Response:
  - 200: {success, message}, also when no session existed
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.authService.Logout(request.Context(), handler.cookie.ReadToken(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookie.Clear(writer)
	respond.OK(writer, "Logged out successfully", nil)
}

/*
Current describes the caller.

GET /api/auth/session

Response:
  - 200: {success, authenticated, user?, csrf_token?}
*/
func (handler *Handler) current(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.authService.Current(request.Context(), requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	fields := respond.Fields{FieldAuthenticated: view.Authenticated}
	if view.Authenticated {
		fields[FieldUser] = view.User
		fields[FieldCSRFToken] = view.CSRFToken
	}

	respond.OK(writer, "", fields)
}
