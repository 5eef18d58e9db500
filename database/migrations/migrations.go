// Package migrations holds the schema history. Each file registers its
// migrations from init(); cmd/printhub blank-imports the package.
package migrations
