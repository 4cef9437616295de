package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

func newAuthServiceEnv() *AuthService {
	cfg := config.AuthConfig{
		JWTSecret:         "test-secret",
		TokenTTLDays:      7,
		BcryptCost:        4,
		SeedAdminEmail:    "admin@test.com",
		SeedAdminPassword: "password123",
	}
	return NewAuthService(cfg, repository.NewMemoryUserRepository(), zap.NewNop())
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceEnv()

	first := "Ada"
	user, token, err := svc.Register(ctx, "ada@example.com", "hunter22", &first, nil)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "admin", user.Role)
	assert.NotEqual(t, "hunter22", user.PasswordHash, "passwords are stored hashed")

	loggedIn, loginToken, err := svc.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, loginToken)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestLoginFailuresAreNotEnumerable(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceEnv()

	_, _, err := svc.Register(ctx, "ada@example.com", "hunter22", nil, nil)
	require.NoError(t, err)

	_, _, wrongPwd := svc.Login(ctx, "ada@example.com", "not-the-password")
	_, _, noAccount := svc.Login(ctx, "nobody@example.com", "whatever")

	require.Error(t, wrongPwd)
	require.Error(t, noAccount)
	assert.Equal(t, wrongPwd.Error(), noAccount.Error(),
		"wrong password and unknown email must be indistinguishable")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceEnv()

	_, _, err := svc.Register(ctx, "ada@example.com", "hunter22", nil, nil)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "ada@example.com", "different", nil, nil)
	de := asDomainError(t, err)
	assert.Equal(t, "CONFLICT", de.Code)
}

func TestSeedAdminUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceEnv()

	require.NoError(t, svc.SeedAdminUser(ctx))
	require.NoError(t, svc.SeedAdminUser(ctx))

	user, token, err := svc.Login(ctx, "admin@test.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, user.FirstName)
	assert.Equal(t, "Test", *user.FirstName)
}

func TestProfileUnknownUser(t *testing.T) {
	svc := newAuthServiceEnv()

	_, err := svc.Profile(context.Background(), "missing")
	de := asDomainError(t, err)
	assert.Equal(t, "NOT_FOUND", de.Code)
}
