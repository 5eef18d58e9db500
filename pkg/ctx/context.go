// Package ctx gives handlers a single *Context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (o *OrderController) Show(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    ...
//	    c.OK(order)
//	}
//
//	api.Get("/orders/{id}", "orders.show", ctx.Wrap(o.Show))
package ctx

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/campusprint/printhub/pkg/bind"
	"github.com/campusprint/printhub/pkg/response"
	"github.com/campusprint/printhub/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap adapts h to net/http.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(&Context{W: w, R: r})
	}
}

// Context is one request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Param returns a chi path parameter; "*" is the wildcard tail.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a positive integer path parameter.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

var trustedProxies atomic.Pointer[[]netip.Prefix]

// TrustProxies replaces the set of peers whose X-Forwarded-For and X-Real-Ip
// headers ClientIP believes. Entries are addresses or CIDR ranges. Valid
// entries are installed even when an error names an invalid one.
func TrustProxies(entries ...string) error {
	var (
		prefixes []netip.Prefix
		bad      []string
	)
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if p, err := netip.ParsePrefix(e); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(e); err == nil {
			addr = addr.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		bad = append(bad, e)
	}
	trustedProxies.Store(&prefixes)
	if len(bad) > 0 {
		return fmt.Errorf("ctx: invalid trusted proxy %s", strings.Join(bad, ", "))
	}
	return nil
}

func trusted(ip string) bool {
	set := trustedProxies.Load()
	if set == nil || len(*set) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range *set {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP is the peer address without its port. When the peer is a trusted
// proxy, X-Forwarded-For is walked from the right and the first hop that is
// not itself trusted wins; X-Real-Ip is the fallback. Forwarding headers from
// any other peer are ignored, so clients cannot pick their own address.
func ClientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if !trusted(peer) {
		return peer
	}

	if fwd := r.Header.Values("X-Forwarded-For"); len(fwd) > 0 {
		hops := strings.Split(strings.Join(fwd, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !trusted(hop) {
				return hop
			}
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-Ip")); real != "" {
		return real
	}
	return peer
}

// BindJSON decodes the body into dest and validates it. On failure the 400
// has already been written and it returns false.
func (c *Context) BindJSON(dest any) bool {
	fields, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(fields) {
		c.JSON(http.StatusBadRequest, response.ErrorBody{Error: "Validation failed", Fields: fields})
		return false
	}
	return true
}

func (c *Context) SetHeader(key, value string) { c.W.Header().Set(key, value) }

func (c *Context) JSON(status int, v any) { response.JSON(c.W, status, v) }

func (c *Context) OK(v any) { c.JSON(http.StatusOK, v) }

// Success sends {"success": true}.
func (c *Context) Success() { c.OK(map[string]bool{"success": true}) }

// Error sends {"error": message}.
func (c *Context) Error(status int, message string) { response.Error(c.W, status, message) }

// Stream copies body to the client. size becomes Content-Length when known.
func (c *Context) Stream(contentType string, size int64, body io.Reader) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := c.W.Header()
	h.Set("Content-Type", contentType)
	h.Set("X-Content-Type-Options", "nosniff")
	if size > 0 {
		h.Set("Content-Length", strconv.FormatInt(size, 10))
	}
	c.W.WriteHeader(http.StatusOK)
	_, _ = io.Copy(c.W, body)
}
