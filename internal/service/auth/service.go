package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/repository"
	"github.com/emsops/dispatch-api/pkg/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidRole        = errors.New("invalid role")
)

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
	}
}

// Login matches the credentials against the user registry by exact
// comparison. A failed login leaves all session state untouched.
func (s *Service) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByCredentials(ctx, username, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		User:        user,
	}, nil
}

// Signup creates a new account. The username must be unique
// (case-sensitive); the new user is not logged in automatically.
func (s *Service) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	role := model.UserRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	user, err := s.userRepo.Create(ctx, &model.User{
		Username: req.Username,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser resolves a token's subject back to the registry record.
func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return user, nil
}

// ValidateToken verifies an access token and returns its claims.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}
