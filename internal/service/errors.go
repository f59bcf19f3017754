package service

import "errors"

var (
	// ErrShopMismatch means an order's items span more than one shop
	ErrShopMismatch = errors.New("order items belong to more than one shop")

	// ErrInvalidTransition means the requested order status change is not
	// declared in the transition table
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrValidation marks malformed input rejected before any write
	ErrValidation = errors.New("validation failed")
)
