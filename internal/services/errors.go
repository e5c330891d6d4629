package services

import "errors"

// Sentinel errors for the business failure modes. Handlers map these to HTTP
// status codes with errors.Is; anything else is a store failure and surfaces
// as a 500 with the underlying message preserved.
var (
	ErrValidation          = errors.New("validation failed")
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrNotFound            = errors.New("not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrAllItemsUnavailable = errors.New("all items in cart are sold out")
	ErrNotCancellable      = errors.New("order cannot be cancelled")
	ErrConflict            = errors.New("conflict")
)
