package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceError_StatusCode(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err      error
		category Category
		status   int
		internal bool
	}{
		{BadRequestError(cause, "invalid uid"), CategoryDataError, http.StatusBadRequest, false},
		{UnAuthorizedError(nil, "bearer token required"), CategoryUnauthorized, http.StatusUnauthorized, false},
		{ResourceNotFoundError(nil, "intent not found"), CategoryResourceNotFound, http.StatusNotFound, false},
		{NotSupportedError(nil, "user role disabled"), CategoryNotSupported, http.StatusNotImplemented, false},
		{ConflictError(cause, "bid not acceptable"), CategoryDataConflict, http.StatusConflict, false},
		{DependencyError(cause, "transaction reverted"), CategoryDependencyFailure, http.StatusBadGateway, true},
		{GeneralError(nil), CategoryGeneralError, http.StatusInternalServerError, true},
	}
	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.True(t, Is(wrapped, tt.category))
			assert.Equal(t, tt.internal, IsInternalError(wrapped))

			var svcErr *ServiceError
			assert.True(t, errors.As(wrapped, &svcErr))
			assert.Equal(t, tt.status, svcErr.StatusCode())
		})
	}
}

func TestServiceError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := DependencyError(cause, "chain unavailable")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "connection refused", err.Error())

	assert.Equal(t, "not supported: manual", NotSupportedError(nil, "manual").(*ServiceError).Err.Error())
	assert.True(t, IsInternalError(errors.New("plain")))
}
