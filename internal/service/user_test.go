package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockbook/inventory-api/internal/domain"
)

func TestUserService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewUserService(env.users)

	admin, err := svc.CreateUser(ctx, domain.User{Name: "Admin", Email: "admin@example.com", Password: "password1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	staff, err := svc.CreateUser(ctx, domain.User{Name: "Clerk", Email: "clerk@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, staff.Role)

	updated, err := svc.UpdateUser(ctx, staff.ID, domain.UserUpdate{Name: ptr("Senior Clerk"), Password: ptr("newpassword2")})
	require.NoError(t, err)
	assert.Equal(t, "Senior Clerk", updated.Name)
	assert.Equal(t, "clerk@example.com", updated.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newpassword2")))

	_, err = svc.UpdateUser(ctx, staff.ID, domain.UserUpdate{Email: ptr("admin@example.com")})
	assert.ErrorIs(t, err, ErrUserEmailExists)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)
	require.NoError(t, svc.DeleteUser(ctx, admin.ID, staff.ID))

	_, err = svc.GetUser(ctx, staff.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, staff.ID), ErrUserNotFound)
}
