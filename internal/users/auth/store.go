// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		Create persists a new account and fills in its ID and CreatedAt.

		Returns:
		  - error: apperr.KindConflict on a duplicate username or email
	*/
	Create(context context.Context, user *User) error

	/*
		FindByUsername returns the account with the given username.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.KindNotFound when absent
	*/
	FindByUsername(context context.Context, username string) (*User, error)
}
