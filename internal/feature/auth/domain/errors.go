// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for authentication operations.
var (
	// ErrUserAlreadyExists indicates that a user with the given email already exists.
	ErrUserAlreadyExists = errors.New("user with this email already exists")

	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned by login for any email/password mismatch.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Gate rejections. The messages are part of the HTTP contract.
	ErrKeyNotProvided = errors.New("API Key not provided")
	ErrInvalidKey     = errors.New("Invalid key")
	ErrRateLimited    = errors.New("Rate limit reached")
)
