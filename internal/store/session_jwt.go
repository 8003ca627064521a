package store

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"storytime/pkg/domain"
)

// ErrInvalidToken covers every verification failure: bad signature, bad
// structure, or expiry. Callers get a single uniform error; the wrapped
// cause is for server-side logs only.
var ErrInvalidToken = errors.New("invalid session token")

// JWTSessionStore issues and verifies HS256 session tokens carrying the
// user id and email. The secret is fixed at construction and never rotated.
type JWTSessionStore struct {
	secret []byte
	ttl    time.Duration
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewJWTSessionStore builds a stateless JWT session store.
func NewJWTSessionStore(secret string, ttl time.Duration) *JWTSessionStore {
	return &JWTSessionStore{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// NewSession creates a signed token for the user.
func (s *JWTSessionStore) NewSession(user domain.User) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ClaimsFromToken verifies a token and returns the identity embedded in its
// claims. Verification failure is a normal outcome, never a panic.
func (s *JWTSessionStore) ClaimsFromToken(token string) (domain.Identity, error) {
	claims := sessionClaims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return domain.Identity{}, errors.Join(ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return domain.Identity{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Identity{}, errors.Join(ErrInvalidToken, errors.New("token subject missing"))
	}
	return domain.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
