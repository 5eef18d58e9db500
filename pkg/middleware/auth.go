package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/campusprint/printhub/pkg/session"
)

// ErrNoSession is passed to the failure handler when the request carries no
// session token at all.
var ErrNoSession = errors.New("middleware: no session token")

// Authenticator resolves a session token and returns a context carrying the
// authenticated principal.
type Authenticator func(ctx context.Context, token string) (context.Context, error)

// FailureHandler writes the response for a rejected request.
type FailureHandler func(w http.ResponseWriter, r *http.Request, err error)

// RequireSession reads the token from cookie (or a Bearer header), resolves
// it with authn and rejects the request through fail when that errors.
func RequireSession(cookie string, authn Authenticator, fail FailureHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.Token(r, cookie)
			if token == "" {
				fail(w, r, ErrNoSession)
				return
			}

			ctx, err := authn(r.Context(), token)
			if err != nil {
				fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
