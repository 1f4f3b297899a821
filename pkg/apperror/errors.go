package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Sessions (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAccountInactive() *AppError {
	return New("AUTH_003", "Account is inactive", http.StatusForbidden)
}

// ErrForbidden is the general authorization failure for business operations.
func ErrForbidden(message string) *AppError {
	return New("AUTH_004", message, http.StatusForbidden)
}

// ---- Audit Trail (AUD) ----

func ErrUnknownEntityType(name string) *AppError {
	return New("AUD_001", fmt.Sprintf("Unrecognized entity type: %s", name), http.StatusBadRequest)
}

func ErrInvalidDocumentID() *AppError {
	return New("AUD_002", "Invalid document ID format", http.StatusBadRequest)
}

// ErrAuditAccessDenied is deliberately distinct from ErrNotFound so callers
// can present access-denied and missing-document differently.
func ErrAuditAccessDenied() *AppError {
	return New("AUD_003", "You do not have permission to view this audit history", http.StatusForbidden)
}

func ErrAuditQueryFailed(err error) *AppError {
	return Wrap("AUD_004", "Audit query failed", http.StatusInternalServerError, err)
}

// ---- Catalog & Bookings (CAT) ----

func ErrNotFound(entity string) *AppError {
	return New("CAT_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrListingDeleted() *AppError {
	return New("CAT_002", "Listing has been deleted", http.StatusGone)
}

func ErrAlreadyBooked() *AppError {
	return New("CAT_003", "You have already booked this time slot", http.StatusConflict)
}

func ErrNoSeatsAvailable() *AppError {
	return New("CAT_004", "No more seats are available for this session", http.StatusConflict)
}

func ErrSlugTaken(slug string) *AppError {
	return New("CAT_005", fmt.Sprintf("Slug already in use: %s", slug), http.StatusConflict)
}

func ErrProgressTooLow() *AppError {
	return New("CAT_006", "Progress too low to issue certificate", http.StatusBadRequest)
}

func ErrInvalidStatusTransition(from, to string) *AppError {
	return New("CAT_007", fmt.Sprintf("Cannot change status from %s to %s", from, to), http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
