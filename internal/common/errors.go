// Package common defines sentinel errors and small helpers shared by the
// citizen portal client packages. Callers should use errors.Is to match the
// error values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound = errors.New("not found")

	// Session errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Input errors surfaced to the user before an operation is attempted.
	ErrorValidation = errors.New("validation error")
)
