package services

import "errors"

// Error kinds. Controllers map them to HTTP statuses with errors.Is.
var (
	ErrValidation    = errors.New("validation")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrMisconfigured = errors.New("misconfigured")
)

// Error is a failure the caller can act on. Message is safe to show to
// clients; Fields carries per-field validation messages when there are any.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Invalid returns a validation error carrying field messages.
func Invalid(fields map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: "Validation failed", Fields: fields}
}

var (
	ErrInvalidCredentials = newError(ErrUnauthorized, "Invalid credentials")
	ErrInvalidSession     = newError(ErrUnauthorized, "Unauthorized")

	ErrUserNotFound   = newError(ErrNotFound, "User not found")
	ErrVendorNotFound = newError(ErrNotFound, "Vendor not found")

	ErrPricingUnavailable = newError(ErrMisconfigured, "Pricing not configured")

	ErrOrderNotFound     = newError(ErrNotFound, "Order not found")
	ErrAlreadyAccepted   = newError(ErrConflict, "Order already accepted")
	ErrNotYourOrder      = newError(ErrForbidden, "Not your order")
	ErrInvalidTransition = newError(ErrConflict, "Invalid status transition")
	ErrNotAccepted       = newError(ErrConflict, "Order has not been accepted")

	ErrNoFile          = newError(ErrValidation, "No file provided")
	ErrUnsupportedType = newError(ErrValidation, "Only PDF files are allowed")
	ErrFileTooLarge    = newError(ErrValidation, "File size exceeds 50MB limit")
	ErrFileForbidden   = newError(ErrForbidden, "Unauthorized")
	ErrFileNotFound    = newError(ErrNotFound, "File not found")
)
