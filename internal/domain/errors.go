package domain

import "errors"

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("duplicate account")
	ErrInvalidAccount   = errors.New("invalid account")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrStatusNotFound   = errors.New("status not found")
)

// Login failures that no amount of reconnecting will fix.
var (
	ErrLoginPayloadUnavailable = errors.New("login payload unavailable")
	ErrLoginRejected           = errors.New("login rejected")
)
