package identity

import (
	"context"
	"strings"
	"time"

	"github.com/campusprint/printhub/pkg/auth"
	"github.com/campusprint/printhub/pkg/cache"
	"github.com/google/uuid"
)

const (
	codeTTL    = 10 * time.Minute
	sessionTTL = 60 * 24 * time.Hour
)

// Signed issues its own login codes and session tokens. Codes are minted
// out-of-band (see `printhub identity:code`) and redeemed once. Revoked and
// redeemed token ids are remembered in the cache until they expire.
type Signed struct {
	signer   *auth.Signer
	store    *cache.Store
	redirect string
}

// NewSigned returns a Signed provider. store may be nil, in which case
// logout and single-use codes are not enforced.
func NewSigned(signer *auth.Signer, store *cache.Store, redirect string) *Signed {
	return &Signed{signer: signer, store: store, redirect: redirect}
}

// StableID derives a deterministic identity id from an email address.
func StableID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))).String()
}

// IssueCode mints a login code for id.
func (p *Signed) IssueCode(id Identity) (string, error) {
	if id.ID == "" {
		id.ID = StableID(id.Email)
	}
	code, _, err := p.signer.Issue(auth.KindLoginCode, id.ID, id.Email, id.Name, codeTTL)
	return code, err
}

func (p *Signed) RedirectURL(_ context.Context, _ string) (string, error) {
	return p.redirect, nil
}

func (p *Signed) ExchangeCode(ctx context.Context, code string) (string, error) {
	claims, err := p.signer.Parse(code, auth.KindLoginCode)
	if err != nil {
		return "", ErrInvalidCode
	}
	used, err := p.store.Has(ctx, usedKey(claims.ID))
	if err != nil {
		return "", err
	}
	if used {
		return "", ErrInvalidCode
	}
	if err := p.store.Set(ctx, usedKey(claims.ID), true, remaining(claims)); err != nil {
		return "", err
	}

	token, _, err := p.signer.Issue(auth.KindSession, claims.Subject, claims.Email, claims.Name, sessionTTL)
	return token, err
}

func (p *Signed) Current(ctx context.Context, token string) (*Identity, error) {
	claims, err := p.signer.Parse(token, auth.KindSession)
	if err != nil {
		return nil, ErrInvalidSession
	}
	revoked, err := p.store.Has(ctx, revokedKey(claims.ID))
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidSession
	}
	return &Identity{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

func (p *Signed) Invalidate(ctx context.Context, token string) error {
	claims, err := p.signer.Parse(token, auth.KindSession)
	if err != nil {
		return nil
	}
	return p.store.Set(ctx, revokedKey(claims.ID), true, remaining(claims))
}

func usedKey(jti string) string    { return "identity:used:" + jti }
func revokedKey(jti string) string { return "identity:revoked:" + jti }

func remaining(c *auth.Claims) time.Duration {
	d := time.Until(c.ExpiresAt.Time)
	if d < time.Second {
		return time.Second
	}
	return d
}
