package apperrors

import "errors"

// Common errors
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidPayload    = errors.New("message payload inconsistent with kind")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrSessionNotFound   = errors.New("whatsapp session not found")
	ErrBridgeUnavailable = errors.New("whatsapp bridge unavailable")
	ErrAlreadyExists     = errors.New("already exists")
)
