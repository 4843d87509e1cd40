package domain

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrValidation         = errors.New("validation failed")
	ErrUpstream           = errors.New("upstream request failed")
	ErrInvalidDiscount    = errors.New("discount must be between 0 and 100")
	ErrInvalidPrice       = errors.New("price must not be negative")
	ErrCannotMove         = errors.New("cannot move category further in that direction")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
