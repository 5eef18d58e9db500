// Package identity adapts the student identity provider.
//
// A Provider turns an OAuth callback code into a session token and resolves
// that token to an Identity on every request. The remote driver talks to
// the hosted users service; the signed driver issues its own HS256 tokens
// and is meant for local and self-hosted deployments.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusprint/printhub/config"
	"github.com/campusprint/printhub/pkg/auth"
	"github.com/campusprint/printhub/pkg/cache"
)

var (
	// ErrInvalidSession means the token is unknown, expired or revoked.
	ErrInvalidSession = errors.New("identity: invalid session")
	// ErrInvalidCode means the login code was rejected.
	ErrInvalidCode = errors.New("identity: invalid code")
)

// Identity is the authenticated principal as reported by the provider.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Provider is the narrow surface the application needs from an identity
// service.
type Provider interface {
	RedirectURL(ctx context.Context, provider string) (string, error)
	ExchangeCode(ctx context.Context, code string) (string, error)
	Current(ctx context.Context, token string) (*Identity, error)
	// Invalidate ends the session. Unknown tokens are not an error.
	Invalidate(ctx context.Context, token string) error
}

// Connect builds the provider named by IDENTITY_DRIVER.
func Connect(store *cache.Store) (Provider, error) {
	switch driver := strings.ToLower(config.IdentityDriver()); driver {
	case "remote":
		if config.IdentityAPIURL() == "" {
			return nil, fmt.Errorf("identity: IDENTITY_API_URL is required for the remote driver")
		}
		return NewRemote(config.IdentityAPIURL(), config.IdentityAPIKey()), nil
	case "signed":
		return NewSigned(auth.NewSigner(config.JWTSecret()), store, config.IdentityRedirectURL()), nil
	default:
		return nil, fmt.Errorf("identity: unsupported IDENTITY_DRIVER %q (supported: remote, signed)", driver)
	}
}
