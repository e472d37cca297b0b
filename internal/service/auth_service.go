package service

import (
	"context"
	"errors"
	"fmt"

	"carmeet/internal/model"
	"carmeet/internal/repository"
	"carmeet/internal/utils"
)

// ErrInvalidCredentials is returned for both an unknown username and a
// wrong password, deliberately not revealing which half was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService provides admin authentication
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	AdminByToken(ctx context.Context, token string) (*model.Admin, error)
}

type authService struct {
	adminRepo repository.AdminRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(adminRepo repository.AdminRepository) AuthService {
	return &authService{adminRepo: adminRepo}
}

// Login verifies the credentials and issues a fresh opaque session token.
// The new token replaces whatever token the admin held before, so any
// earlier session stops working the moment this returns.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("error finding admin by username: %w", err)
	}
	if admin == nil {
		return "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, admin.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := utils.NewSessionToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	if err := s.adminRepo.UpdateSessionToken(ctx, admin.ID, token); err != nil {
		return "", fmt.Errorf("failed to store session token: %w", err)
	}

	return token, nil
}

// AdminByToken resolves a session token to the admin holding it. Returns
// nil without error when no admin holds the token.
func (s *authService) AdminByToken(ctx context.Context, token string) (*model.Admin, error) {
	if token == "" {
		return nil, nil
	}
	admin, err := s.adminRepo.FindBySessionToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("error finding admin by session token: %w", err)
	}
	return admin, nil
}
