// Package token implements the signed-token codec: issuing, verifying and
// fingerprinting the access/refresh JWT pair.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Class distinguishes the two token kinds. The codec embeds the class in
// the claims but does not enforce use-site restrictions; callers must check
// the class returned by Verify against the expected one.
type Class string

const (
	ClassAccess  Class = "access"
	ClassRefresh Class = "refresh"
)

type Claims struct {
	UserID string `json:"user_id"`
	Type   Class  `json:"type"`
	jwt.RegisteredClaims
}

// Token is a freshly issued credential together with its lifetime in
// seconds, ready to be returned to the client.
type Token struct {
	Raw       string
	ExpiresIn int64
}

var ErrInvalidToken = errors.New("invalid token")

// Codec signs and validates tokens with a fixed process-wide secret. It is
// safe for concurrent use; all state is read-only after construction.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *Codec) ttl(class Class) time.Duration {
	if class == ClassRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue creates a signed token for the subject with an absolute expiry of
// now + TTL(class).
func (c *Codec) Issue(userID string, class Class) (Token, error) {
	now := time.Now()
	ttl := c.ttl(class)

	claims := &Claims{
		UserID: userID,
		Type:   class,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	// A jti keeps refresh tokens issued to the same subject within the
	// same second from colliding on the blacklist.
	if class == ClassRefresh {
		claims.ID = uuid.New().String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return Token{}, err
	}

	return Token{Raw: tokenString, ExpiresIn: int64(ttl.Seconds())}, nil
}

// Verify validates the signature and expiry of a raw token. It returns
// ErrInvalidToken for malformed input, a bad signature or an expired token;
// it never panics. Class checking is left to the caller.
func (c *Codec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Fingerprint returns the hex SHA-256 digest of a raw token. The blacklist
// stores fingerprints so revoked credentials are never kept in plaintext.
func (c *Codec) Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
