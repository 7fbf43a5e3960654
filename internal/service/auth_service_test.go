package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking_management/internal/domain"
)

func TestAuthRegisterLoginValidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.auth.Register(ctx, domain.RegisterDTO{
		Username: "alice",
		Password: "s3cret-pw",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, account.Role)
	assert.Empty(t, account.Password)

	resp, err := f.auth.Login(ctx, domain.LoginDTO{Username: "alice", Password: "s3cret-pw"})
	require.NoError(t, err)
	assert.Equal(t, account.UserID, resp.UserID)
	assert.Equal(t, domain.RoleUser, resp.Role)

	principal, err := f.auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, account.UserID, principal.UserID)
	assert.Equal(t, domain.RoleUser, principal.Role)
}

func TestAuthRegisterDuplicateUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, domain.RegisterDTO{
		Username: "alice",
		Password: "s3cret-pw",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, domain.RegisterDTO{
		Username: "alice",
		Password: "other-pw",
		Email:    "alice2@example.com",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = f.auth.Register(ctx, domain.RegisterDTO{
		Username: "alice2",
		Password: "other-pw",
		Email:    "alice@example.com",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, domain.RegisterDTO{
		Username: "alice",
		Password: "s3cret-pw",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, domain.LoginDTO{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, domain.LoginDTO{Username: "nobody", Password: "s3cret-pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthValidateGarbageToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthChangeRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.auth.Register(ctx, domain.RegisterDTO{
		Username: "alice",
		Password: "s3cret-pw",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	err = f.auth.ChangeRole(ctx, owner(&domain.User{ID: account.UserID}), account.UserID, domain.RoleOperator)
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.auth.ChangeRole(ctx, admin, account.UserID, "SUPERUSER")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	require.NoError(t, f.auth.ChangeRole(ctx, admin, account.UserID, domain.RoleOperator))
	resp, err := f.auth.Login(ctx, domain.LoginDTO{Username: "alice", Password: "s3cret-pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperator, resp.Role)
}
