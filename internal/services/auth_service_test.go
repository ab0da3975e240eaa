package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/auth"
	"fls_backend/internal/services/dto"
)

func TestRegister_SeedsBalanceAndBids(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.auth.Register(env.db, &dto.RegisterRequest{
		Username: "alice",
		Email:    "  Alice@Example.COM ",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.False(t, resp.User.IsAdmin)
	require.NotEmpty(t, resp.Token)

	claims, err := auth.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	assert.Equal(t, 100, env.pointsOf(t, resp.User.ID))
	assert.Equal(t, 5, env.bidsOf(t, resp.User.ID))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(env.db, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = env.auth.Register(env.db, &dto.RegisterRequest{
		Username: "alice2",
		Email:    "ALICE@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrEmailAlreadyExists))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(env.db, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = env.auth.Register(env.db, &dto.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password123",
	})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(env.db, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	resp, err := env.auth.Login(env.db, &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = env.auth.Login(env.db, &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrongpassword",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = env.auth.Login(env.db, &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}
