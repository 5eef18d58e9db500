package controllers

import (
	"context"

	"github.com/campusprint/printhub/app/services"
	"github.com/campusprint/printhub/pkg/ctx"
	"github.com/campusprint/printhub/pkg/identity"
	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/middleware"
)

type identityKey struct{}
type vendorKey struct{}

// StudentAuthenticator resolves the student cookie through the identity
// provider and turns away addresses outside the institutional domain.
func StudentAuthenticator(provider identity.Provider, users *services.UserService) middleware.Authenticator {
	return func(c context.Context, token string) (context.Context, error) {
		id, err := provider.Current(c, token)
		if err != nil {
			return nil, err
		}
		if err := users.Admit(*id); err != nil {
			return nil, err
		}
		c = logger.InjectLogger(c, logger.WithCtx(c).With("identity_id", id.ID))
		return context.WithValue(c, identityKey{}, id), nil
	}
}

// VendorAuthenticator resolves the vendor cookie to a vendor id.
func VendorAuthenticator(vendors *services.VendorAuthService) middleware.Authenticator {
	return func(c context.Context, token string) (context.Context, error) {
		vendorID, err := vendors.VerifySession(c, token)
		if err != nil {
			return nil, err
		}
		c = logger.InjectLogger(c, logger.WithCtx(c).With("vendor_id", vendorID))
		return context.WithValue(c, vendorKey{}, vendorID), nil
	}
}

// currentIdentity is only valid behind the student guard.
func currentIdentity(c *ctx.Context) identity.Identity {
	id, _ := c.Context().Value(identityKey{}).(*identity.Identity)
	if id == nil {
		return identity.Identity{}
	}
	return *id
}

func currentVendor(c *ctx.Context) uint {
	id, _ := c.Context().Value(vendorKey{}).(uint)
	return id
}
