package services

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrMissingUser     = errors.New("userId is required")
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrEmptyCart       = errors.New("cart is empty")
)
