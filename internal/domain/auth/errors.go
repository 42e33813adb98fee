package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrLoginDisabled      = errors.New("admin login is not configured")
)
