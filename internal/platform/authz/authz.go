// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authz derives access decisions from the session identity.

Both guards are pure predicates evaluated once per request. Failures are
terminal for the request and are never retried.
*/
package authz

import (
	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/sec"
)

// DefaultLoginMessage is used when the caller does not supply a context-specific one.
const DefaultLoginMessage = "Please login to continue"

/*
RequireAuthenticated returns the caller's user ID or an Unauthenticated error.

Parameters:
  - identity: *sec.Identity (nil for anonymous)
  - message: string (client-facing reason; empty selects [DefaultLoginMessage])

Returns:
  - int64: Authenticated user ID
  - error: apperr.KindUnauthenticated
*/
func RequireAuthenticated(identity *sec.Identity, message string) (int64, error) {
	if identity == nil || identity.UserID <= 0 {
		if message == "" {
			message = DefaultLoginMessage
		}
		return 0, apperr.Unauthenticated(message)
	}
	return identity.UserID, nil
}

/*
RequireOwnership fails with Forbidden unless the caller owns the resource.

resourceOwnerID must be the authoritative owner read from storage during this
request, never a value taken from the client.

Parameters:
  - identity: *sec.Identity
  - resourceOwnerID: int64
  - message: string (client-facing reason)

Returns:
  - error: apperr.KindUnauthenticated or apperr.KindForbidden
*/
func RequireOwnership(identity *sec.Identity, resourceOwnerID int64, message string) error {
	userID, err := RequireAuthenticated(identity, "")
	if err != nil {
		return err
	}
	if resourceOwnerID <= 0 || userID != resourceOwnerID {
		if message == "" {
			message = "You do not have permission to modify this resource"
		}
		return apperr.Forbidden(message)
	}
	return nil
}

// IsOwner is the non-failing form of [RequireOwnership], used for view flags.
func IsOwner(identity *sec.Identity, resourceOwnerID int64) bool {
	return RequireOwnership(identity, resourceOwnerID, "") == nil
}
