// Package repository provides typed data access to the users,
// sessions and refresh_tokens tables.  The sentinel errors defined
// here let higher layers distinguish failure scenarios without
// depending on database/sql details: handlers translate them into
// HTTP statuses, and the service layer folds several of them into
// the uniform unauthorized responses required for auth endpoints.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.  Repositories
// map sql.ErrNoRows to this error so callers never import
// database/sql.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by user creation when the unique email
// constraint is violated.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as terminating another user's
// session.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrTokenUsed is returned by the conditional used-flag update when
// the targeted refresh token was already redeemed.  Exactly one of
// any number of concurrent redeemers observes success; the rest get
// this error.  The service layer reports it to callers as an invalid
// refresh token.
var ErrTokenUsed = errors.New("refresh token already used")
