package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/jwthelper"
	"github.com/stockbook/inventory-api/internal/repository"
)

var (
	ErrUserEmailExists  = repository.ErrUserEmailExists
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrInvalidToken     = jwthelper.ErrInvalidToken
	ErrTokenRevoked     = errors.New("token has been revoked")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	CountForUpdate(ctx context.Context) (int64, error)
}

type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthService struct {
	tx         Transactor
	repo       AuthUserRepository
	denylist   TokenDenylist
	signingKey []byte
	tokenTTL   time.Duration
}

// NewAuthService builds the service. A nil denylist disables logout
// revocation.
func NewAuthService(tx Transactor, repo AuthUserRepository, denylist TokenDenylist, signingKey []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		tx:         tx,
		repo:       repo,
		denylist:   denylist,
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
	}
}

// Register creates an account. The first account becomes an admin; the
// users table stays locked between the count and the insert.
func (s *AuthService) Register(ctx context.Context, user domain.User) (domain.User, error) {
	var err error
	user.Email = normalizeEmail(user.Email)
	user.Password, err = hashPassword(user.Password)
	if err != nil {
		return domain.User{}, err
	}

	var created domain.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.repo.CountForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("s.repo.CountForUpdate -> %w", err)
		}
		user.Role = domain.RoleStaff
		if n == 0 {
			user.Role = domain.RoleAdmin
		}

		created, err = s.repo.Create(ctx, user)
		if err != nil {
			return fmt.Errorf("s.repo.Create -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	return created, nil
}

// Login checks the credentials and issues a token bound to userAgent.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent string) (string, domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", domain.User{}, ErrWrongCredentials
		}

		return "", domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", domain.User{}, ErrWrongCredentials
	}

	token, err := jwthelper.GenerateToken(s.signingKey, user.ID, userAgent, s.tokenTTL)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("jwthelper.GenerateToken -> %w", err)
	}

	return token, user, nil
}

// Verify parses the token and rejects it when the user agent differs from
// the one it was issued to or when it was revoked.
func (s *AuthService) Verify(ctx context.Context, token, userAgent string) (*jwthelper.UserClaims, error) {
	claims, err := jwthelper.ParseToken(s.signingKey, token)
	if err != nil {
		return nil, fmt.Errorf("jwthelper.ParseToken -> %w", err)
	}
	if claims.UserAgent != userAgent {
		return nil, ErrInvalidToken
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("s.denylist.IsRevoked -> %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *jwthelper.UserClaims) error {
	if s.denylist == nil || claims.ExpiresAt == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("s.denylist.Revoke -> %w", err)
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
