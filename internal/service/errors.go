package service

import "errors"

// Sentinel errors mapped to HTTP statuses by the server layer.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrSlotTaken          = errors.New("slot is not available")
	ErrNotPending         = errors.New("booking is not pending")
)
