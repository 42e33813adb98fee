package auth

import "context"

// AuthService exchanges the configured admin credentials for an API token.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
}
