package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusprint/printhub/app/services"
	"github.com/campusprint/printhub/pkg/ctx"
	"github.com/campusprint/printhub/pkg/identity"
	"github.com/campusprint/printhub/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", services.Invalid(map[string]string{"files": "required"}), 400, "Validation failed"},
		{"conflict is a bad request", services.ErrAlreadyAccepted, 400, "Order already accepted"},
		{"invalid credentials", services.ErrInvalidCredentials, 401, "Invalid credentials"},
		{"forbidden", services.ErrNotYourOrder, 403, "Not your order"},
		{"not found", services.ErrOrderNotFound, 404, "Order not found"},
		{"misconfigured", services.ErrPricingUnavailable, 500, "Pricing not configured"},
		{"wrapped service error", fmt.Errorf("outer: %w", services.ErrFileNotFound), 404, "File not found"},
		{"no cookie", middleware.ErrNoSession, 401, "Unauthorized"},
		{"provider rejected session", identity.ErrInvalidSession, 401, "Unauthorized"},
		{"provider rejected code", identity.ErrInvalidCode, 401, "Invalid authorization code"},
		{"anything else", errors.New("db is on fire"), 500, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.body, body.Error)
		})
	}
}

func TestClassifyKeepsFields(t *testing.T) {
	_, body := classify(services.Invalid(map[string]string{"status": "bad"}))
	assert.Equal(t, map[string]string{"status": "bad"}, body.Fields)
}

func TestAuthFailureWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthFailure(rec, httptest.NewRequest(http.MethodGet, "/", nil), middleware.ErrNoSession)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestFailHidesInternalErrors(t *testing.T) {
	h := ctx.Wrap(func(c *ctx.Context) { fail(c, errors.New("secret connection string")) })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestWildcardKey(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Get("/files/*", ctx.Wrap(func(c *ctx.Context) { got = wildcardKey(c) }))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/uploads/u1/1-ab-notes.pdf", nil))
	assert.Equal(t, "uploads/u1/1-ab-notes.pdf", got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/uploads/u1/my%20notes.pdf", nil))
	assert.Equal(t, "uploads/u1/my notes.pdf", got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/uploads/u1/a%2Fb.pdf", nil))
	assert.Equal(t, "uploads/u1/a/b.pdf", got)
}
