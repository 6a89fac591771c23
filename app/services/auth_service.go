package services

import (
	"context"
	"errors"

	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/pkg/auth"
	"github.com/coldcutclub/storefront/pkg/logger"
	"github.com/coldcutclub/storefront/pkg/mail"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,confirmed"`
}

// AuthResult pairs a user with a fresh token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles signup, login, and password resets.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a customer account and returns a signed token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	taken, err := s.users.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and returns a signed token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Profile returns the account for an authenticated user id.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.Find(ctx, userID)
}

// UpdateProfile changes the mutable account fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, name, phone, address string) (*models.User, error) {
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.Phone = phone
	user.Address = address
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset emails a short-lived reset token. It succeeds
// silently for unknown emails so the endpoint cannot be used to
// discover which addresses exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil
		}
		return err
	}

	token, err := auth.GenerateResetToken(user.ID)
	if err != nil {
		return err
	}

	go func() {
		err := mail.New().
			To(user.Email).
			Subject("Reset your ColdCut Club password").
			Text("Use this token to reset your password within the next hour:\n\n" + token).
			Send()
		if err != nil {
			logger.Error("auth: sending reset mail", "error", err)
		}
	}()
	return nil
}

// ResetPassword validates a reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := auth.ValidateToken(token)
	if err != nil || claims.Role != auth.RoleReset {
		return ErrInvalidResetToken
	}

	user, err := s.users.Find(ctx, claims.UserID)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	return s.users.Update(ctx, user)
}
