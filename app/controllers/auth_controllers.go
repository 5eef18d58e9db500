package controllers

import (
	"net/http"

	"github.com/campusprint/printhub/app/services"
	"github.com/campusprint/printhub/pkg/bind"
	"github.com/campusprint/printhub/pkg/ctx"
	"github.com/campusprint/printhub/pkg/identity"
	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/session"
)

// AuthController handles the student login flow and profile.
type AuthController struct {
	provider identity.Provider
	users    *services.UserService
}

func NewAuthController(provider identity.Provider, users *services.UserService) *AuthController {
	return &AuthController{provider: provider, users: users}
}

// RedirectURL handles GET /api/oauth/google/redirect_url.
func (a *AuthController) RedirectURL(c *ctx.Context) {
	u, err := a.provider.RedirectURL(c.Context(), "google")
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]string{"redirectUrl": u})
}

// CreateSession handles POST /api/sessions: it trades the login code for a
// session token and stores it in the student cookie.
func (a *AuthController) CreateSession(c *ctx.Context) {
	var in struct {
		Code string `json:"code"`
	}
	if err := bind.Decode(c.R, &in); err != nil || in.Code == "" {
		c.Error(http.StatusBadRequest, "No authorization code provided")
		return
	}

	token, err := a.provider.ExchangeCode(c.Context(), in.Code)
	if err != nil {
		fail(c, err)
		return
	}
	session.Student().Issue(c.W, token)
	c.Success()
}

// Me handles GET /api/users/me. The local user record is created on the
// first call.
func (a *AuthController) Me(c *ctx.Context) {
	id := currentIdentity(c)
	u, err := a.users.EnsureUser(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(meResource(id, *u))
}

// Logout handles GET /api/logout. It always clears the cookie, even when the
// provider could not be reached.
func (a *AuthController) Logout(c *ctx.Context) {
	if token := session.Token(c.R, session.StudentCookie); token != "" {
		if err := a.provider.Invalidate(c.Context(), token); err != nil {
			logger.WithCtx(c.Context()).Warn("session invalidation failed", "error", err.Error())
		}
	}
	session.Student().Clear(c.W)
	c.Success()
}

type profileInput struct {
	Phone  string `json:"phone" validate:"max=32"`
	Hostel string `json:"hostel" validate:"max=64"`
}

// UpdateProfile handles PATCH /api/profile.
func (a *AuthController) UpdateProfile(c *ctx.Context) {
	var in profileInput
	if !c.BindJSON(&in) {
		return
	}
	if err := a.users.UpdateProfile(c.Context(), currentIdentity(c).ID, in.Phone, in.Hostel); err != nil {
		fail(c, err)
		return
	}
	c.Success()
}
