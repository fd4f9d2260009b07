// Package common defines shared constants and sentinel errors used across
// the repository, service and transport layers of filevault. Callers should
// use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Credential errors.
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token errors returned by the token service.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrUnauthenticated is the parent of every auth gate rejection. Expired
	// and invalid tokens are rejected as errors wrapping both this value and
	// the token error.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrNoToken      = fmt.Errorf("%w: no token", ErrUnauthenticated)
	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrUnauthenticated)

	// Custody errors.
	ErrForbidden          = errors.New("forbidden")
	ErrNotFoundOnDisk     = errors.New("file content missing from blob store")
	ErrStorageWriteFailed = errors.New("storage write failed")
)
