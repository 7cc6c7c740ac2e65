package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/jwthelper"
	"github.com/stockbook/inventory-api/internal/service"
)

const (
	ContextKeyUserID = "userID"
	ContextKeyClaims = "claims"
	ContextKeyUser   = "user"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errAdminOnly    = errors.New("admin role required")
)

type TokenVerifier interface {
	Verify(ctx context.Context, token, userAgent string) (*jwthelper.UserClaims, error)
}

type UserFinder interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type Authenticator struct {
	verifier TokenVerifier
	users    UserFinder
}

func NewAuthenticator(verifier TokenVerifier, users UserFinder) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		users:    users,
	}
}

// VerifyJWT accepts "Authorization: Bearer <token>". Websocket clients that
// cannot set headers may pass the token as the "token" query parameter.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := a.verifier.Verify(ctx.Request.Context(), token, ctx.Request.UserAgent())
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrTokenRevoked) {
				response.RenderErr(ctx, response.ErrUnauthorized(err))
				return
			}

			err = fmt.Errorf("middleware.VerifyJWT -> a.verifier.Verify -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}

		ctx.Set(ContextKeyUserID, claims.UserID)
		ctx.Set(ContextKeyClaims, claims)
		ctx.Next()
	}
}

// RequireAdmin must run after VerifyJWT.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := a.users.GetUser(ctx.Request.Context(), ctx.GetUint(ContextKeyUserID))
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				response.RenderErr(ctx, response.ErrUnauthorized(err))
				return
			}

			err = fmt.Errorf("middleware.RequireAdmin -> a.users.GetUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}
		if !user.IsAdmin() {
			response.RenderErr(ctx, response.ErrPermissionDenied(errAdminOnly))
			return
		}

		ctx.Set(ContextKeyUser, user)
		ctx.Next()
	}
}

// Claims returns the verified token claims, or nil outside VerifyJWT.
func Claims(ctx *gin.Context) *jwthelper.UserClaims {
	v, ok := ctx.Get(ContextKeyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*jwthelper.UserClaims)

	return claims
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ctx.Query("token")
}
