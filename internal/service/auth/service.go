package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/auth"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Credentials is the single admin account accepted by Login.
type Credentials struct {
	Username     string
	PasswordHash string
}

type AuthServiceImpl struct {
	jwt.Service
	creds Credentials
}

func NewAuthService(jwtService jwt.Service, creds Credentials) auth.AuthService {
	return &AuthServiceImpl{
		Service: jwtService,
		creds:   creds,
	}
}

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}
	if a.creds.Username == "" || a.creds.PasswordHash == "" {
		return auth.TokenResponse{}, auth.ErrLoginDisabled
	}

	// Both checks always run so a wrong username costs the same as a wrong password
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(a.creds.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(a.creds.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		slog.Warn("Admin login rejected", "username", req.Username)
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := a.Service.GenerateAdminToken(a.creds.Username)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	slog.Info("Admin logged in", "username", a.creds.Username)
	return auth.TokenResponse{AccessToken: token, ExpiresAt: expiresAt}, nil
}
