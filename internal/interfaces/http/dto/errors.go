package dto

import (
	"errors"
	"net/http"

	"github.com/bookingplatform/backend/internal/domain/catalog"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
	// ErrCodeInvalidQuantity is used when a line quantity is not positive
	ErrCodeInvalidQuantity = "ERR_INVALID_QUANTITY"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeDuplicateRequest is used when an idempotency key is replayed
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
)

// Catalog and dispatch error codes
const (
	// ErrCodeInsufficientStock is used when internal stock cannot cover a line
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeSaleIncomplete is used when at least one sale line was not sold
	ErrCodeSaleIncomplete = "ERR_SALE_INCOMPLETE"
	// ErrCodeConfiguration is used for provider wiring faults
	ErrCodeConfiguration = "ERR_CONFIGURATION"
	// ErrCodeUpstream is used when a partner call fails
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodeNoSnapshot is used when no catalog snapshot can be produced
	ErrCodeNoSnapshot = "ERR_NO_SNAPSHOT"
	// ErrCodePersistence is used when the product store fails
	ErrCodePersistence = "ERR_PERSISTENCE"
)

// Background job error codes
const (
	// ErrCodeSchedulerUnavailable is used when the reconcile scheduler is not running
	ErrCodeSchedulerUnavailable = "ERR_SCHEDULER_UNAVAILABLE"
	// ErrCodeJobQueueFull is used when the reconcile queue cannot take another job
	ErrCodeJobQueueFull = "ERR_JOB_QUEUE_FULL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the body exceeds the configured limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
	// ErrCodeTimeout is used when a request exceeds its deadline
	ErrCodeTimeout = "ERR_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeInvalidQuantity:    http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeDuplicateRequest: http.StatusConflict,

	// Catalog and dispatch errors
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeSaleIncomplete:    http.StatusUnprocessableEntity,
	ErrCodeConfiguration:     http.StatusInternalServerError,
	ErrCodeUpstream:          http.StatusBadGateway,
	ErrCodeNoSnapshot:        http.StatusServiceUnavailable,
	ErrCodePersistence:       http.StatusInternalServerError,

	// Background job errors
	ErrCodeSchedulerUnavailable: http.StatusServiceUnavailable,
	ErrCodeJobQueueFull:         http.StatusTooManyRequests,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps bare domain codes to standardized codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"DUPLICATE_REQUEST":      ErrCodeDuplicateRequest,
	"INSUFFICIENT_INVENTORY": ErrCodeInsufficientStock,
	"INVALID_QUANTITY":       ErrCodeInvalidQuantity,
	"CONFIGURATION":          ErrCodeConfiguration,
	"UPSTREAM":               ErrCodeUpstream,
	"PERSISTENCE":            ErrCodePersistence,
	"VALIDATION_ERROR":       ErrCodeValidation,
	"BAD_REQUEST":            ErrCodeBadRequest,
	"INTERNAL_ERROR":         ErrCodeInternal,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// ErrorCodeFor classifies a catalog taxonomy error. The second result is
// false when err does not belong to the taxonomy.
func ErrorCodeFor(err error) (string, bool) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return ErrCodeNotFound, true
	case errors.Is(err, catalog.ErrInvalidQuantity):
		return ErrCodeInvalidQuantity, true
	case errors.Is(err, catalog.ErrInsufficientInventory):
		return ErrCodeInsufficientStock, true
	case errors.Is(err, catalog.ErrNoSnapshot):
		return ErrCodeNoSnapshot, true
	case errors.Is(err, catalog.ErrUpstream):
		return ErrCodeUpstream, true
	case errors.Is(err, catalog.ErrConfiguration):
		return ErrCodeConfiguration, true
	case errors.Is(err, catalog.ErrPersistence):
		return ErrCodePersistence, true
	}
	return "", false
}
