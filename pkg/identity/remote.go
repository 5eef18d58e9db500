package identity

import (
	"context"
	"fmt"
	gohttp "net/http"
	"net/url"
	"time"

	"github.com/campusprint/printhub/pkg/http"
)

// Remote calls the hosted users service over HTTP/JSON.
type Remote struct {
	api *http.Client
}

// NewRemote returns a Remote provider for the service at baseURL.
func NewRemote(baseURL, apiKey string) *Remote {
	return &Remote{api: &http.Client{
		BaseURL:  baseURL,
		Headers:  map[string]string{"x-api-key": apiKey},
		Timeout:  5 * time.Second,
		Attempts: 3,
		Backoff:  200 * time.Millisecond,
	}}
}

func (p *Remote) RedirectURL(ctx context.Context, provider string) (string, error) {
	resp, err := p.api.Do(ctx, gohttp.MethodGet, "/oauth/"+url.PathEscape(provider)+"/redirect_url", nil)
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}

	var out struct {
		RedirectURL string `json:"redirect_url"`
	}
	if err := resp.JSON(&out); err != nil {
		return "", err
	}
	if out.RedirectURL == "" {
		return "", fmt.Errorf("identity: empty redirect url")
	}
	return out.RedirectURL, nil
}

func (p *Remote) ExchangeCode(ctx context.Context, code string) (string, error) {
	resp, err := p.api.Do(ctx, gohttp.MethodPost, "/sessions", map[string]string{"code": code})
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return "", ErrInvalidCode
	}
	if err := resp.Err(); err != nil {
		return "", err
	}

	var out struct {
		SessionToken string `json:"session_token"`
	}
	if err := resp.JSON(&out); err != nil {
		return "", err
	}
	if out.SessionToken == "" {
		return "", ErrInvalidCode
	}
	return out.SessionToken, nil
}

func (p *Remote) Current(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	resp, err := p.api.Do(ctx, gohttp.MethodGet, "/users/me", nil, http.Bearer(token))
	if err != nil {
		return nil, err
	}
	err = resp.Err()
	if http.IsStatus(err, gohttp.StatusUnauthorized, gohttp.StatusNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}

	var id Identity
	if err := resp.JSON(&id); err != nil {
		return nil, err
	}
	if id.ID == "" {
		return nil, ErrInvalidSession
	}
	return &id, nil
}

func (p *Remote) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	resp, err := p.api.Do(ctx, gohttp.MethodDelete, "/sessions", nil, http.Bearer(token))
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil && !http.IsStatus(err, gohttp.StatusUnauthorized, gohttp.StatusNotFound) {
		return err
	}
	return nil
}
