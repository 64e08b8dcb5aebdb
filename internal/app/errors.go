package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied credentials do not match.
	// The message is shown to end users and must not enable account enumeration.
	ErrInvalidCredentials = errors.New("Incorrect email address or password")

	ErrSignupFieldsRequired = errors.New("name, email and password required")
	ErrEmailAlreadyExists   = errors.New("email already exists")

	// ErrSessionNotFound covers both unknown session IDs and sessions owned
	// by another user.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyMessage rejects blank chat input before any persistence.
	ErrEmptyMessage = errors.New("empty message")
)
