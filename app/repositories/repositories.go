// Package repositories is the gorm data access layer. Every repository takes
// the *gorm.DB it should use so services and tests can hand in their own
// connection.
package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = gorm.ErrRecordNotFound

	// ErrNotOwner is returned when the row exists but belongs to someone else.
	ErrNotOwner = errors.New("repositories: row owned by another principal")

	// ErrPrecondition is returned when a conditional update found its row
	// but the row no longer matched the guard (status changed underneath).
	ErrPrecondition = errors.New("repositories: precondition failed")

	// ErrOutOfOrder is returned when a status change would not move the
	// order forward from its current stage.
	ErrOutOfOrder = errors.New("repositories: status does not move forward")
)
