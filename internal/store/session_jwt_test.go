package store

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"storytime/pkg/domain"
)

func TestJWTSessionStoreRoundTrip(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Minute)
	user := domain.User{ID: "user-1", Email: "a@x.com"}

	token, err := s.NewSession(user)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	identity, err := s.ClaimsFromToken(token)
	if err != nil {
		t.Fatalf("claims from token: %v", err)
	}
	if identity.UserID != "user-1" || identity.Email != "a@x.com" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestJWTSessionStoreRejectsOtherSecret(t *testing.T) {
	signer := NewJWTSessionStore("secret-a", time.Minute)
	verifier := NewJWTSessionStore("secret-b", time.Minute)

	token, err := signer.NewSession(domain.User{ID: "user-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := verifier.ClaimsFromToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign secret, got %v", err)
	}
}

func TestJWTSessionStoreRejectsExpiredToken(t *testing.T) {
	s := NewJWTSessionStore("test-secret", -time.Minute)

	token, err := s.NewSession(domain.User{ID: "user-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := s.ClaimsFromToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestJWTSessionStoreRejectsMalformedInput(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Minute)
	for _, token := range []string{"", "garbage", "a.b.c", "  \t "} {
		if _, err := s.ClaimsFromToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestJWTSessionStoreRejectsMissingSubject(t *testing.T) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	s := NewJWTSessionStore("test-secret", time.Minute)
	if _, err := s.ClaimsFromToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for missing subject, got %v", err)
	}
}
