package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

type AuthService struct {
	users         repository.UserRepository
	sessionSecret string
}

func NewAuthService(users repository.UserRepository, sessionSecret string) *AuthService {
	return &AuthService{users: users, sessionSecret: sessionSecret}
}

func (a *AuthService) Register(ctx context.Context, email, name, password, role string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" || len(password) < 6 {
		return nil, ErrInvalidInput
	}

	// Self-registration is only allowed for end users.
	role = strings.ToLower(strings.TrimSpace(role))
	if role != "end_user" {
		role = "end_user"
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Email: email, Name: name, Role: role}
	if err := a.users.Create(ctx, u, hash); err != nil {
		return nil, err
	}
	return u, nil
}

func (a *AuthService) Login(ctx context.Context, email, password string) (token string, user *models.User, err error) {
	u, hash, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil || !u.Active {
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(hash, password) {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := utils.SignJWT(a.sessionSecret, u.ID, u.Role, 24*time.Hour)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// UpdatePassword requires the current password before writing a new hash.
func (a *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 6 {
		return ErrInvalidInput
	}
	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidCredentials
	}
	_, hash, err := a.users.GetByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(hash, current) {
		return ErrInvalidCredentials
	}
	newHash, err := utils.HashPassword(next)
	if err != nil {
		return err
	}
	return a.users.UpdatePasswordHash(ctx, userID, newHash)
}

// ConfirmationToken re-issues the short-lived token the confirmation email
// carries. Dispatching the email itself is the mail provider's job.
func (a *AuthService) ConfirmationToken(ctx context.Context, email string) (string, error) {
	u, _, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		// Do not reveal whether the address exists.
		return "", nil
	}
	return utils.SignJWT(a.sessionSecret, u.ID, "confirm", 30*time.Minute)
}
