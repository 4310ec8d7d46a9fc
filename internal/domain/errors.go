package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrOperationFailed    = errors.New("operation failed")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrAlreadyInCart      = errors.New("item already in cart")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthenticated    = errors.New("not authenticated")
)
