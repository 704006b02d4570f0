// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// Identity is the authenticated caller resolved from a session cookie.
//
// It travels in the request context; a nil *Identity means anonymous.
type Identity struct {
	UserID   int64
	Username string
	Role     UserRole

	// SessionKey is the server-side key (SHA-256 of the cookie token).
	SessionKey string

	// CSRFToken is the session's anti-forgery value, empty until first issued.
	CSRFToken string
}
