package domain

import "errors"

var (
	// ErrValidation indicates a malformed name, number, group name or pattern.
	ErrValidation = errors.New("validation failed")
	// ErrNotSubscribed indicates the sender has no active subscription.
	ErrNotSubscribed = errors.New("number must be subscribed to send messages")
	// ErrNotRegistered indicates that no account exists for the given name.
	ErrNotRegistered = errors.New("number is not registered")
)
