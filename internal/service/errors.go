package service

import "errors"

// Business errors exported for the controller's HTTP mapping.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrForbidden         = errors.New("forbidden")
)
