// Package token issues and verifies the signed session tokens that stand in
// for server-side sessions. Tokens are stateless: verification is a pure
// signature-and-expiry check, no revocation store is consulted.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is how long an issued session token stays valid.
const TokenTTL = 24 * time.Hour

var (
	// ErrTokenExpired is returned when a token's expiry has passed
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for malformed, tampered or wrongly signed tokens
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims carries the token's identity assertion
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// Issuer creates and verifies session tokens with a shared HMAC secret
type Issuer struct {
	secret []byte
	ttl    time.Duration

	// now is swapped out in tests to issue tokens in the past
	now func() time.Time
}

// NewIssuer creates an Issuer with the standard 24h token lifetime
func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
}

// Issue creates a signed token asserting the given user identity
func (i *Issuer) Issue(userID int64, email string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique ID so repeated logins within the same second still
			// produce distinct tokens.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims.
// Expired tokens yield ErrTokenExpired; everything else wrong with the
// token (bad signature, wrong algorithm, garbage) yields ErrTokenInvalid.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
