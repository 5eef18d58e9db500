package reqid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func run(t *testing.T, inbound string) (seen, echoed string) {
	t.Helper()
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromCtx(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(Header, inbound)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec.Header().Get(Header)
}

func TestMiddlewareGeneratesID(t *testing.T) {
	seen, echoed := run(t, "")
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, echoed)
}

func TestMiddlewareHonoursInboundID(t *testing.T) {
	seen, _ := run(t, "edge-42")
	assert.Equal(t, "edge-42", seen)
}

func TestMiddlewareReplacesUnsafeInboundID(t *testing.T) {
	seen, _ := run(t, "bad id\nwith newline")
	assert.NotContains(t, seen, " ")

	seen, _ = run(t, strings.Repeat("a", 100))
	assert.Len(t, seen, 36)
}
