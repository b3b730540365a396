// Package auth issues and resolves bearer tokens, hashes passwords and
// implements registration and login on top of the vacation store.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/warp/vacationflow/vacation"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 30 * 24 * time.Hour

// ErrUnauthenticated means the caller presented no usable credentials.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is what a resolved token says about its bearer.
type Identity struct {
	UserID string
	Role   vacation.Role
}

// TokenResolver turns an opaque bearer token into an Identity.
type TokenResolver interface {
	Resolve(token string) (Identity, error)
}

// Claims is the JWT payload: sub carries the user ID.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 tokens with a shared secret.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ TokenResolver = (*JWTIssuer)(nil)

func NewJWTIssuer(secret string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
}

// Issue returns a signed token for the given identity.
func (j *JWTIssuer) Issue(id Identity) (string, error) {
	now := j.now()
	claims := Claims{
		Role: string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Resolve verifies signature and expiry. Every failure is
// ErrUnauthenticated wrapped with the reason.
func (j *JWTIssuer) Resolve(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%w: token expired", ErrUnauthenticated)
		}
		return Identity{}, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}
	return Identity{UserID: claims.Subject, Role: vacation.Role(claims.Role)}, nil
}
