package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

// stubUsers implements just enough of UserRepository for the service.
type stubUsers struct {
	repository.UserRepository

	byEmail map[string]*models.User
	hashes  map[string]string
	created []*models.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{byEmail: map[string]*models.User{}, hashes: map[string]string{}}
}

func (s *stubUsers) add(id, email, password string, active bool) {
	h, _ := utils.HashPassword(password)
	s.byEmail[email] = &models.User{ID: id, Email: email, Name: "User " + id, Role: "end_user", Active: active}
	s.hashes[email] = h
}

func (s *stubUsers) Create(_ context.Context, u *models.User, hash string) error {
	u.ID = "u" + u.Email
	u.Active = true
	s.created = append(s.created, u)
	s.byEmail[u.Email] = u
	s.hashes[u.Email] = hash
	return nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*models.User, string, error) {
	return s.byEmail[email], s.hashes[email], nil
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) UpdatePasswordHash(_ context.Context, id, hash string) error {
	for _, u := range s.byEmail {
		if u.ID == id {
			s.hashes[u.Email] = hash
		}
	}
	return nil
}

const secret = "test-session-secret-long-enough"

func TestRegisterForcesEndUserRole(t *testing.T) {
	users := newStubUsers()
	svc := NewAuthService(users, secret)

	u, err := svc.Register(context.Background(), "eve@example.com", "Eve", "hunter22", "admin")
	require.NoError(t, err)
	assert.Equal(t, "end_user", u.Role, "self-registration must not grant elevated roles")
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewAuthService(newStubUsers(), secret)
	_, err := svc.Register(context.Background(), "a@b.c", "A", "short", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	users := newStubUsers()
	users.add("u1", "ann@example.com", "correct-horse", true)
	svc := NewAuthService(users, secret)

	t.Run("success issues a parseable token", func(t *testing.T) {
		tok, u, err := svc.Login(context.Background(), "ann@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)

		claims, err := utils.ParseJWT(secret, tok)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "ann@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "ghost@example.com", "x")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	users := newStubUsers()
	users.add("u2", "gone@example.com", "correct-horse", false)
	svc := NewAuthService(users, secret)

	_, _, err := svc.Login(context.Background(), "gone@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdatePassword(t *testing.T) {
	users := newStubUsers()
	users.add("u1", "ann@example.com", "old-password", true)
	svc := NewAuthService(users, secret)
	ctx := context.Background()

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.UpdatePassword(ctx, "u1", "wrong", "new-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success rotates the hash", func(t *testing.T) {
		require.NoError(t, svc.UpdatePassword(ctx, "u1", "old-password", "new-password"))

		_, _, err := svc.Login(ctx, "ann@example.com", "old-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = svc.Login(ctx, "ann@example.com", "new-password")
		assert.NoError(t, err)
	})
}

func TestConfirmationTokenHidesUnknownAddresses(t *testing.T) {
	users := newStubUsers()
	users.add("u1", "ann@example.com", "pw-123456", true)
	svc := NewAuthService(users, secret)
	ctx := context.Background()

	tok, err := svc.ConfirmationToken(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	tok, err = svc.ConfirmationToken(ctx, "ghost@example.com")
	require.NoError(t, err, "unknown address must not error")
	assert.Empty(t, tok)
}
