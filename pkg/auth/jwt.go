package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for malformed, expired or wrongly-typed tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenKind separates one-shot login codes from long-lived session tokens so
// neither can stand in for the other.
type TokenKind string

const (
	KindLoginCode TokenKind = "login_code"
	KindSession   TokenKind = "session"
)

// Claims holds the typed JWT payload. Subject carries the identity id.
type Claims struct {
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
	Kind  TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Signer issues and validates HS256 tokens with one shared secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner returns a Signer for secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// Issue signs a token of kind for subject that expires after ttl. Every
// token gets a fresh jti so it can be revoked on its own.
func (s *Signer) Issue(kind TokenKind, subject, email, name string, ttl time.Duration) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Email: email,
		Name:  name,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Parse validates t and requires it to be of kind.
func (s *Signer) Parse(t string, kind TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Kind != kind || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
