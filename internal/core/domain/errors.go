package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these so
// the transport layer can map it to a status code with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("access forbidden")
	ErrResetTokenInvalid = errors.New("password reset token is invalid or has expired")
)

var (
	ErrUserExists           = kindError(ErrConflict, "user already exists")
	ErrUserNotFound         = kindError(ErrNotFound, "user not found")
	ErrInvalidCredentials   = kindError(ErrUnauthorized, "invalid email or password")
	ErrInvalidToken         = kindError(ErrUnauthorized, "invalid or expired session token")
	ErrOrderNotFound        = kindError(ErrNotFound, "no order found with this id")
	ErrOrderDelivered       = kindError(ErrConflict, "order has already been delivered")
	ErrInvalidTransition    = kindError(ErrConflict, "invalid order status transition")
	ErrProductNotFound      = kindError(ErrNotFound, "no product found with one or more ids")
	ErrInsufficientStock    = kindError(ErrConflict, "insufficient stock for one or more products")
	ErrOrderStatusChanged   = kindError(ErrConflict, "order was updated by another request, reload and retry")
	ErrEmailDelivery        = errors.New("email could not be sent")
	ErrPasswordMismatch     = Validation("passwords do not match")
	ErrIncorrectOldPassword = Validation("old password is incorrect")
)

type kindErr struct {
	kind error
	msg  string
}

func (e *kindErr) Error() string { return e.msg }
func (e *kindErr) Unwrap() error { return e.kind }

func kindError(kind error, msg string) error {
	return &kindErr{kind: kind, msg: msg}
}

// Validation returns an error of kind ErrValidation carrying msg as its
// client-facing message.
func Validation(msg string) error {
	return kindError(ErrValidation, msg)
}

// Validationf is Validation with formatting.
func Validationf(format string, args ...any) error {
	return kindError(ErrValidation, fmt.Sprintf(format, args...))
}
