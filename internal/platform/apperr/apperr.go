// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Circle Blog.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a closed [Kind], a machine-readable code and a user-facing message.
  - Mapping: Explicit mapping from Kind to standard HTTP Status Codes.
  - Privacy: The Cause is kept for server-side logs and never serialized.

Every error that leaves the service layer should be an [AppError] so that each
caller can branch on its Kind explicitly.
*/
package apperr

import (
	"errors"
	"net/http"
)

// # Error Kinds

// Kind is the closed set of failure categories the API can report.
type Kind int

const (
	// KindInternal is a storage or unexpected failure. Never carries user-facing detail.
	KindInternal Kind = iota
	// KindUnauthenticated means no valid session was presented.
	KindUnauthenticated
	// KindForbidden means the caller is authenticated but does not own the resource.
	KindForbidden
	// KindInvalidInput is a validation failure (empty/too-long content, bad id).
	KindInvalidInput
	// KindNotFound means the referenced post/comment/user does not exist.
	KindNotFound
	// KindCSRFMismatch means the anti-forgery token was absent or wrong.
	KindCSRFMismatch
	// KindConflict is a uniqueness violation surfaced to the caller (registration).
	KindConflict
)

// String returns the machine-readable code for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindInvalidInput:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindCSRFMismatch:
		return "CSRF_MISMATCH"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

// HTTPStatus maps the kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden, KindCSRFMismatch:
		return http.StatusForbidden
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the canonical error type for the Circle Blog API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Kind is the failure category.
	Kind Kind `json:"-"`
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CSRF_MISMATCH").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"message"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

func newError(kind Kind, msg string) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       kind.String(),
		Message:    msg,
		HTTPStatus: kind.HTTPStatus(),
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Post") // Returns "Post not found"
func NotFound(resource string) *AppError {
	return newError(KindNotFound, resource+" not found")
}

// Unauthenticated creates a 401 [AppError].
func Unauthenticated(msg string) *AppError {
	return newError(KindUnauthenticated, msg)
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return newError(KindForbidden, msg)
}

// CSRFMismatch creates a 403 [AppError] for a missing or wrong anti-forgery token.
func CSRFMismatch() *AppError {
	return newError(KindCSRFMismatch, "Invalid security token")
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return newError(KindConflict, msg)
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	e := newError(KindInvalidInput, msg)
	e.Details = details
	return e
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	e := newError(KindInternal, "An error occurred. Please try again later.")
	e.Cause = cause
	return e
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// KindOf returns the Kind of err. Errors that are not an [*AppError] are internal.
func KindOf(err error) Kind {
	if ae := As(err); ae != nil {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
