package catalog

import "errors"

// Error taxonomy shared by the dispatcher, the reconciler and the HTTP layer.
// Finer-grained errors wrap one of these with %w.
var (
	ErrNotFound              = errors.New("catalog: not found")
	ErrConfiguration         = errors.New("catalog: configuration error")
	ErrInsufficientInventory = errors.New("catalog: insufficient inventory")
	ErrUpstream              = errors.New("catalog: upstream partner failure")
	ErrPersistence           = errors.New("catalog: persistence failure")
	ErrInvalidQuantity       = errors.New("catalog: quantity must be positive")
	ErrNoSnapshot            = errors.New("catalog: no catalog snapshot available")
)

// Product validation errors
var (
	ErrProductNameRequired  = errors.New("catalog: product name is required")
	ErrProductNameTooLong   = errors.New("catalog: product name cannot exceed 200 characters")
	ErrNegativeQuantity     = errors.New("catalog: available quantity cannot be negative")
	ErrNegativePrice        = errors.New("catalog: price cannot be negative")
	ErrInvalidCurrency      = errors.New("catalog: currency must be a 3-letter code")
	ErrAttributeKeyRequired = errors.New("catalog: attribute key is required")
)
