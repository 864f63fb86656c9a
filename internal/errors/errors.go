// Package errors provides custom error types for the Folio API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Reference catalog errors. A missing catalog entry during normal operation
// indicates a data-integrity defect, not a recoverable user mistake.
var (
	ErrUnknownCategory      = &AppError{Code: "UNKNOWN_CATEGORY", Message: "Unknown catalog category", StatusCode: http.StatusBadRequest}
	ErrCatalogEntryNotFound = &AppError{Code: "CATALOG_ENTRY_NOT_FOUND", Message: "Catalog entry not found", StatusCode: http.StatusNotFound}
)

// Security registry errors.
var (
	ErrSecurityNotFound = &AppError{Code: "SECURITY_NOT_FOUND", Message: "Security not found", StatusCode: http.StatusNotFound}
	ErrDuplicateSymbol  = &AppError{Code: "DUPLICATE_SYMBOL", Message: "A security with this symbol already exists", StatusCode: http.StatusConflict}
	ErrInvalidReference = &AppError{Code: "INVALID_REFERENCE", Message: "One or more catalog codes do not resolve", StatusCode: http.StatusBadRequest}
)

// Portfolio and holding errors.
var (
	ErrPortfolioNotFound    = &AppError{Code: "PORTFOLIO_NOT_FOUND", Message: "Portfolio not found", StatusCode: http.StatusNotFound}
	ErrHoldingNotFound      = &AppError{Code: "HOLDING_NOT_FOUND", Message: "Holding not found", StatusCode: http.StatusNotFound}
	ErrInsufficientQuantity = &AppError{Code: "INSUFFICIENT_QUANTITY", Message: "Sale quantity exceeds held quantity", StatusCode: http.StatusBadRequest}
)
