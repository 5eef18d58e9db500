// Package session issues and reads the two session cookies: the student
// cookie carrying the identity provider's token and the vendor cookie
// carrying an opaque vendor session token.
//
//	session.Vendor().Issue(w, token)
//	token := session.Token(r, session.VendorCookie)
//	session.Vendor().Clear(w)
package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/campusprint/printhub/config"
)

const (
	StudentCookie = "printhub_session"
	VendorCookie  = "vendor_session"

	StudentTTL = 60 * 24 * time.Hour
	VendorTTL  = 7 * 24 * time.Hour
)

// Options configures one cookie.
type Options struct {
	Name     string
	TTL      time.Duration
	Secure   bool
	SameSite http.SameSite
	Path     string
}

// Student returns the student cookie options. SameSite=None lets the SPA
// call the API cross-site, and browsers require Secure alongside it.
func Student() Options {
	return Options{
		Name:     StudentCookie,
		TTL:      StudentTTL,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Path:     "/",
	}
}

// Vendor returns the vendor cookie options.
func Vendor() Options {
	return Options{
		Name:     VendorCookie,
		TTL:      VendorTTL,
		Secure:   config.CookieSecure(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
}

// Issue sets the cookie to value.
func (o Options) Issue(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     o.Path,
		MaxAge:   int(o.TTL.Seconds()),
		Expires:  time.Now().Add(o.TTL),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	})
}

// Clear expires the cookie.
func (o Options) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     o.Name,
		Value:    "",
		Path:     o.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	})
}

// Token returns the session token from the named cookie, falling back to an
// Authorization: Bearer header for non-browser clients.
func Token(r *http.Request, cookie string) string {
	if c, err := r.Cookie(cookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
