package errors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoNumbersAvailable  = errors.New("no numbers available")
	ErrOrderNotActive      = errors.New("order not active")
	ErrForeignOrder        = errors.New("order belongs to another user")
	ErrNoMatchingOrder     = errors.New("no matching order")
	ErrUnauthorizedWebhook = errors.New("unauthorized webhook")
	ErrUnavailable         = errors.New("temporarily unavailable")
)
