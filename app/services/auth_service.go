// Package services holds the orchestration between controllers and
// repositories: credential handling for the auth flows and the
// charge-then-persist checkout sequence.
package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/auth"
)

// ErrInvalidCredentials is returned by Login for a wrong password and by
// ForgotPassword for a wrong security answer.
var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLen = 6

// AuthService implements registration, login, password reset and profile
// updates on top of the user repository and the credential codec.
type AuthService struct {
	users repositories.UserRepository
}

func NewAuthService(users repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Answer   string
}

// Register hashes the password and persists a new ordinary user.
// A duplicate email surfaces as apperr.ErrConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	digest, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: digest,
		Phone:    in.Phone,
		Address:  in.Address,
		Answer:   in.Answer,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the credentials and issues a session token.
// An unregistered email is apperr.ErrNotFound; a wrong password is
// ErrInvalidCredentials — the controller maps each to its own response.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	ok, err := auth.CheckPassword(u.Password, password)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.ID.Hex(), string(u.Role))
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// ForgotPassword resets the password when the stored security answer
// matches. The new password is hashed before persistence.
func (s *AuthService) ForgotPassword(ctx context.Context, email, answer, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperr.Validation("newPassword", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.Answer == "" || u.Answer != answer {
		return ErrInvalidCredentials
	}

	digest, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = digest
	return s.users.Update(ctx, u)
}

// ProfileInput carries the updatable profile fields. Empty fields keep
// their stored value; the password is re-hashed only when a new plaintext
// of sufficient length is supplied.
type ProfileInput struct {
	Name     string
	Password string
	Phone    string
	Address  string
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileInput) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Password != "" {
		if len(in.Password) < minPasswordLen {
			return nil, apperr.Validation("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
		}
		digest, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = digest
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if in.Address != "" {
		u.Address = in.Address
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
