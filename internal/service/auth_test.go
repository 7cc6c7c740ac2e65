package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/cache"
)

const testUserAgent = "go-test"

func newAuthService(env *testEnv) *AuthService {
	return NewAuthService(env.tx, env.users, cache.NewDenylist(env.redis), []byte("secret"), time.Hour)
}

func TestAuthService_RegisterRoles(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newTestEnv(t))

	first, err := svc.Register(ctx, domain.User{Name: "Owner", Email: " Owner@Example.com ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, first.Role)
	assert.Equal(t, "owner@example.com", first.Email)
	assert.NotEqual(t, "password1", first.Password)

	second, err := svc.Register(ctx, domain.User{Name: "Clerk", Email: "clerk@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, second.Role)

	_, err = svc.Register(ctx, domain.User{Name: "Again", Email: "clerk@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestAuthService_RegisterConcurrentFirstUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newAuthService(env)

	const n = 5
	roles := make([]string, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			u, err := svc.Register(ctx, domain.User{
				Name:     fmt.Sprintf("User %d", i),
				Email:    fmt.Sprintf("user%d@example.com", i),
				Password: "password1",
			})
			roles[i] = u.Role
			return err
		})
	}
	require.NoError(t, g.Wait())

	admins := 0
	for _, role := range roles {
		if role == domain.RoleAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newTestEnv(t))

	_, err := svc.Register(ctx, domain.User{Name: "Owner", Email: "owner@example.com", Password: "password1"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "owner@example.com", "wrong-pass1", testUserAgent)
	assert.ErrorIs(t, err, ErrWrongCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password1", testUserAgent)
	assert.ErrorIs(t, err, ErrWrongCredentials)

	token, user, err := svc.Login(ctx, "OWNER@example.com", "password1", testUserAgent)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Owner", user.Name)

	claims, err := svc.Verify(ctx, token, testUserAgent)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = svc.Verify(ctx, token, "other-agent")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newTestEnv(t))

	_, err := svc.Register(ctx, domain.User{Name: "Owner", Email: "owner@example.com", Password: "password1"})
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "owner@example.com", "password1", testUserAgent)
	require.NoError(t, err)

	claims, err := svc.Verify(ctx, token, testUserAgent)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	_, err = svc.Verify(ctx, token, testUserAgent)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
