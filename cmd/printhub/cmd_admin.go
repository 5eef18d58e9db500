package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/config"
	"github.com/campusprint/printhub/internal/kernel"
	"github.com/campusprint/printhub/pkg/app"
	"github.com/campusprint/printhub/pkg/auth"
	"github.com/campusprint/printhub/pkg/cache"
	"github.com/campusprint/printhub/pkg/identity"
	"github.com/campusprint/printhub/pkg/logger"
)

var vendorFlags struct {
	username string
	shop     string
	password string
	email    string
	phone    string
}

var vendorCreateCmd = dbCommand("vendor:create", "Provision a print shop account",
	func(cmd *cobra.Command, a *app.App, _ []string) error {
		password := vendorFlags.password
		if password == "" {
			password = config.Get("VENDOR_PASSWORD", "")
		}
		v := &models.Vendor{
			Username:     strings.TrimSpace(vendorFlags.username),
			ShopName:     strings.TrimSpace(vendorFlags.shop),
			ContactEmail: vendorFlags.email,
			ContactPhone: vendorFlags.phone,
			IsActive:     true,
		}
		if err := kernel.NewServices(a).Vendors.CreateVendor(cmd.Context(), v, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Vendor %q created (id %d).\n", v.Username, v.ID)
		return nil
	})

var vendorSessionsPruneCmd = dbCommand("vendor:sessions:prune", "Delete expired vendor sessions",
	func(cmd *cobra.Command, a *app.App, _ []string) error {
		n, err := kernel.NewServices(a).Vendors.PruneSessions(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired session(s).\n", n)
		return nil
	})

var pricingFlags models.PricingConfig

var pricingSetCmd = dbCommand("pricing:set", "Install a new rate card",
	func(cmd *cobra.Command, a *app.App, _ []string) error {
		if store, err := cache.Connect(cmd.Context()); err != nil {
			logger.Warn("cache unavailable, cached pricing expires on its own", "error", err.Error())
		} else {
			a.Cache = store
			defer store.Close()
		}

		row := pricingFlags
		if err := kernel.NewServices(a).Pricing.Update(cmd.Context(), &row); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pricing updated: bw %.2f/%.2f, color %.2f/%.2f, delivery %.2f\n",
			row.BWSinglePage, row.BWDoublePage, row.ColorSinglePage, row.ColorDoublePage, row.DeliveryFee)
		return nil
	})

var codeFlags struct {
	email string
	name  string
}

var identityCodeCmd = &cobra.Command{
	Use:   "identity:code",
	Short: "Mint a one-time student login code (signed identity driver)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if driver := config.IdentityDriver(); driver != "signed" {
			return fmt.Errorf("identity:code needs IDENTITY_DRIVER=signed (current: %s)", driver)
		}
		if codeFlags.email == "" {
			return fmt.Errorf("--email is required")
		}

		p := identity.NewSigned(auth.NewSigner(config.JWTSecret()), nil, config.IdentityRedirectURL())
		code, err := p.IssueCode(identity.Identity{Email: codeFlags.email, Name: codeFlags.name})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), code)
		return nil
	},
}

func init() {
	f := vendorCreateCmd.Flags()
	f.StringVar(&vendorFlags.username, "username", "", "Login name")
	f.StringVar(&vendorFlags.shop, "shop", "", "Shop name shown to students")
	f.StringVar(&vendorFlags.password, "password", "", "Password (default $VENDOR_PASSWORD)")
	f.StringVar(&vendorFlags.email, "email", "", "Contact email")
	f.StringVar(&vendorFlags.phone, "phone", "", "Contact phone")
	_ = vendorCreateCmd.MarkFlagRequired("username")
	_ = vendorCreateCmd.MarkFlagRequired("shop")

	pricingSetCmd.Long = "Inserts a pricing row that takes effect for orders created from now on. Existing orders keep their total."
	p := pricingSetCmd.Flags()
	p.Float64Var(&pricingFlags.BWSinglePage, "bw-single", 2, "Black and white, single-sided, per page")
	p.Float64Var(&pricingFlags.BWDoublePage, "bw-double", 3, "Black and white, double-sided, per page")
	p.Float64Var(&pricingFlags.ColorSinglePage, "color-single", 5, "Colour, single-sided, per page")
	p.Float64Var(&pricingFlags.ColorDoublePage, "color-double", 8, "Colour, double-sided, per page")
	p.Float64Var(&pricingFlags.DeliveryFee, "delivery", 20, "Flat delivery fee per order")

	identityCodeCmd.Flags().StringVar(&codeFlags.email, "email", "", "Student email address")
	identityCodeCmd.Flags().StringVar(&codeFlags.name, "name", "", "Display name")
}
