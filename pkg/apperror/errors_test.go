package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("AUD_001", "Unrecognized entity type: Foo", http.StatusBadRequest)
	assert.Equal(t, "[AUD_001] Unrecognized entity type: Foo", e.Error())

	wrapped := Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, errors.New("conn refused"))
	assert.Contains(t, wrapped.Error(), "conn refused")
	assert.Contains(t, wrapped.Error(), "SYS_001")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	e := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(e, inner))

	var appErr *AppError
	assert.True(t, errors.As(fmt.Errorf("handler: %w", e), &appErr))
	assert.Equal(t, "SYS_001", appErr.Code)
}

func TestErrorCatalog_Statuses(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code string
		want int
	}{
		{"invalid credentials", ErrInvalidCredentials(), "AUTH_001", http.StatusUnauthorized},
		{"invalid token", ErrInvalidToken(), "AUTH_002", http.StatusUnauthorized},
		{"unknown entity type", ErrUnknownEntityType("Foo"), "AUD_001", http.StatusBadRequest},
		{"invalid document id", ErrInvalidDocumentID(), "AUD_002", http.StatusBadRequest},
		{"audit access denied", ErrAuditAccessDenied(), "AUD_003", http.StatusForbidden},
		{"not found", ErrNotFound("Listing"), "CAT_001", http.StatusNotFound},
		{"listing deleted", ErrListingDeleted(), "CAT_002", http.StatusGone},
		{"already booked", ErrAlreadyBooked(), "CAT_003", http.StatusConflict},
		{"no seats", ErrNoSeatsAvailable(), "CAT_004", http.StatusConflict},
		{"progress too low", ErrProgressTooLow(), "CAT_006", http.StatusBadRequest},
		{"rate limit", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{"validation", Validation("rating required"), "VAL_001", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.want, tt.err.HTTPStatus)
		})
	}
}

// Access-denied and not-found must stay distinguishable for audit callers.
func TestAccessDeniedDistinctFromNotFound(t *testing.T) {
	denied := ErrAuditAccessDenied()
	missing := ErrNotFound("Listing")

	assert.NotEqual(t, denied.Code, missing.Code)
	assert.NotEqual(t, denied.HTTPStatus, missing.HTTPStatus)
}
