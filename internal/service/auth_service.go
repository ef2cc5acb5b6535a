package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/catalog-service/internal/auth"
	"github.com/spec-kit/catalog-service/internal/config"
	"github.com/spec-kit/catalog-service/internal/domain"
	"github.com/spec-kit/catalog-service/internal/repository"
	apperrors "github.com/spec-kit/catalog-service/pkg/util"
)

// TokenPair bundles the access and refresh credentials returned by login and
// refresh operations.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, cfg.Auth.RefreshTokenTTLDays),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account. Only buyer and seller roles can be
// self-assigned; admins are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	if role == "" {
		role = domain.RoleBuyer
	}
	if role != domain.RoleBuyer && role != domain.RoleSeller {
		return nil, apperrors.NewValidationError("role must be buyer or seller", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// the unique constraint catches registrations racing past the lookup
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates an account and issues an access/refresh token pair.
// Unknown email, deactivated account and wrong password all yield the same
// unauthorized error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, apperrors.MapError(err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The user is
// re-resolved so a deactivated account cannot keep refreshing.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *TokenPair, error) {
	claims, err := s.tokenMgr.Decode(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, nil, apperrors.NewUnauthorized("token has expired")
		}
		return nil, nil, apperrors.NewUnauthorized("could not validate credentials")
	}
	if claims.Email() == "" {
		return nil, nil, apperrors.NewUnauthorized("could not validate credentials")
	}

	user, err := s.users.GetActiveByEmail(ctx, claims.Email())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("could not validate credentials")
		}
		return nil, nil, apperrors.MapError(err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return user, pair, nil
}

func (s *AuthService) issuePair(user *domain.User) (*TokenPair, error) {
	access, accessExp, err := s.tokenMgr.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokenMgr.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
