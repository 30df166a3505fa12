package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Bazaarly/internal/database/dbtest"
	"Bazaarly/internal/models"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(dbtest.Open(t))

	u, err := users.Register(ctx, " asha ", "Asha@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "asha", u.Username)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "s3cret-pass", u.Password)

	got, err := users.Authenticate(ctx, "ASHA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.Authenticate(ctx, "asha@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadLogin)

	_, err = users.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrBadLogin)
}

func TestRegister_Rules(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(dbtest.Open(t))

	_, err := users.Register(ctx, "asha", "asha@example.com", "short")
	requireValidationError(t, err, "Password must be at least 8 characters long")

	_, err = users.Register(ctx, "asha", "asha@example.com", "long-enough")
	require.NoError(t, err)

	_, err = users.Register(ctx, "asha-2", "asha@example.com", "long-enough")
	requireConflict(t, err, "exists")
}

func TestAuthenticate_Suspended(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	users := NewUserService(db)

	u, err := users.Register(ctx, "ravi", "ravi@example.com", "long-enough")
	require.NoError(t, err)
	require.NoError(t, db.Model(u).Update("is_suspended", true).Error)

	_, err = users.Authenticate(ctx, "ravi@example.com", "long-enough")
	requirePermission(t, err)
}
