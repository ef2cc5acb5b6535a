package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/catalog-service/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: 42, Email: "b@x.com", Role: domain.RoleBuyer, IsActive: true}
}

func TestIssueAccessAndDecode(t *testing.T) {
	tm := NewTokenManager("unit-secret", 30, 7)

	token, exp, err := tm.IssueAccess(testUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if remaining := time.Until(exp); remaining < 29*time.Minute || remaining > 31*time.Minute {
		t.Fatalf("expected ~30m expiry, got %v", remaining)
	}

	claims, err := tm.Decode(token)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if claims.Email() != "b@x.com" {
		t.Fatalf("sub claim = %q, want b@x.com", claims.Email())
	}
	if claims.Role != domain.RoleBuyer {
		t.Fatalf("role claim = %q, want buyer", claims.Role)
	}
	if claims.UserID != 42 {
		t.Fatalf("id claim = %d, want 42", claims.UserID)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("exp claim missing")
	}
}

func TestIssueRefreshLivesLonger(t *testing.T) {
	tm := NewTokenManager("unit-secret", 30, 7)

	_, refreshExp, err := tm.IssueRefresh(testUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if remaining := time.Until(refreshExp); remaining < 6*24*time.Hour {
		t.Fatalf("expected days-scale refresh expiry, got %v", remaining)
	}
}

func TestDecodeExpiredToken(t *testing.T) {
	tm := NewTokenManager("unit-secret", 30, 7)

	claims := &Claims{
		Role:   domain.RoleBuyer,
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "b@x.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := tm.Decode(signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestDecodeTamperedToken(t *testing.T) {
	tm := NewTokenManager("unit-secret", 30, 7)

	token, _, err := tm.IssueAccess(testUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := tm.Decode(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	issuer := NewTokenManager("issuer-secret", 30, 7)
	verifier := NewTokenManager("other-secret", 30, 7)

	token, _, err := issuer.IssueAccess(testUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := verifier.Decode(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestDecodeWrongSigningMethod(t *testing.T) {
	tm := NewTokenManager("unit-secret", 30, 7)

	claims := jwt.MapClaims{"sub": "b@x.com", "exp": time.Now().Add(time.Hour).Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("unit-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := tm.Decode(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	tm := NewTokenManager("unit-secret", 30, 7)
	if _, err := tm.Decode("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestDecodeMissingSubject(t *testing.T) {
	tm := NewTokenManager("unit-secret", 30, 7)

	claims := &Claims{
		Role: domain.RoleBuyer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	// decoding succeeds; callers are responsible for the sub check
	decoded, err := tm.Decode(signed)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Email() != "" {
		t.Fatalf("expected empty subject, got %q", decoded.Email())
	}
}
