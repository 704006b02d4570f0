// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"net/http"
	"time"

	"github.com/taibuivan/circleblog/internal/platform/constants"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// ReadToken returns the session token carried by the request, or "".
func (config CookieConfig) ReadToken(request *http.Request) string {
	cookie, err := request.Cookie(config.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Write sets the session cookie: HTTP-only, SameSite=Lax, expiring with the session.
func (config CookieConfig) Write(writer http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(writer, &http.Cookie{
		Name:     config.Name,
		Value:    token,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie in the browser.
func (config CookieConfig) Clear(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     config.Name,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
