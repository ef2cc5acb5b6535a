package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/catalog-service/internal/domain"
)

// Token decoding failures are collapsed into two categories: an expired
// signature is reported distinctly, everything else (bad signature, wrong
// method, garbage input) is just invalid.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenManager issues and validates HS256 JWT tokens. It is constructed once
// from immutable configuration and is safe for concurrent use.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTLMinutes, refreshTTLDays int) *TokenManager {
	if accessTTLMinutes <= 0 {
		accessTTLMinutes = 30
	}
	if refreshTTLDays <= 0 {
		refreshTTLDays = 7
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// Claims describes the JWT payload: subject email, role, user id and expiry.
type Claims struct {
	Role   domain.Role `json:"role"`
	UserID int64       `json:"id"`
	jwt.RegisteredClaims
}

// Email returns the subject claim.
func (c *Claims) Email() string {
	return c.Subject
}

// IssueAccess signs a short-lived access token for the user.
func (tm *TokenManager) IssueAccess(user *domain.User) (string, time.Time, error) {
	return tm.issue(user, tm.accessTTL)
}

// IssueRefresh signs a long-lived refresh token with the same claim shape.
func (tm *TokenManager) IssueRefresh(user *domain.User) (string, time.Time, error) {
	return tm.issue(user, tm.refreshTTL)
}

func (tm *TokenManager) issue(user *domain.User, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		Role:   user.Role,
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Decode validates the signature and expiry and returns the claims. No claim
// shape validation beyond expiry happens here; callers must re-check that the
// subject is present.
func (tm *TokenManager) Decode(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
