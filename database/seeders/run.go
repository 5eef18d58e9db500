// Package seeders fills a migrated database with the rows the service
// needs to start: the pricing card and, outside production, a demo vendor.
// Seeders register from init() and must be idempotent; `printhub seed`
// runs them in registration order.
package seeders

import (
	"fmt"
	"slices"
	"strings"

	"github.com/campusprint/printhub/pkg/logger"
	"gorm.io/gorm"
)

// SeederFunc is the signature for a seed function.
type SeederFunc func(db *gorm.DB) error

type seeder struct {
	name string
	fn   SeederFunc
}

var registry []seeder

// Register adds fn under name. It is meant for init(); a duplicate name
// panics.
func Register(name string, fn SeederFunc) {
	if slices.ContainsFunc(registry, func(s seeder) bool { return s.name == name }) {
		panic("seeders: duplicate seeder " + name)
	}
	registry = append(registry, seeder{name: name, fn: fn})
}

// Names lists the registered seeders in run order.
func Names() []string {
	out := make([]string, len(registry))
	for i, s := range registry {
		out[i] = s.name
	}
	return out
}

// RunAll runs every seeder.
func RunAll(db *gorm.DB) error { return Run(db) }

// Run runs the named seeders, or all of them when names is empty. Each
// seeder gets its own transaction, so a failure leaves earlier seeds in
// place and stops the run.
func Run(db *gorm.DB, names ...string) error {
	var unknown []string
	for _, n := range names {
		if !slices.Contains(Names(), n) {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("seeders: unknown %s (have %s)", strings.Join(unknown, ", "), strings.Join(Names(), ", "))
	}

	for _, s := range registry {
		if len(names) > 0 && !slices.Contains(names, s.name) {
			continue
		}
		if err := db.Transaction(s.fn); err != nil {
			return fmt.Errorf("seeder %q: %w", s.name, err)
		}
		logger.Info("seeded", "seeder", s.name)
	}
	return nil
}
