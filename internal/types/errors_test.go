package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestAppErrorImplementsError verifies that *AppError satisfies the error interface.
func TestAppErrorImplementsError(t *testing.T) {
	var _ error = (*AppError)(nil)
}

func TestAppErrorErrorFormat(t *testing.T) {
	appErr := NewAppError(ErrCodeSecretNotFound, "secret Production/app/creds not found", nil)

	expected := "secret_not_found: secret Production/app/creds not found"
	if appErr.Error() != expected {
		t.Errorf("Error() = %q, want %q", appErr.Error(), expected)
	}

	wrapped := NewAppError(ErrCodeSecretStoreUnavailable, "fetch failed", errors.New("dial tcp: timeout"))
	expected = "secret_store_unavailable: fetch failed: dial tcp: timeout"
	if wrapped.Error() != expected {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), expected)
	}
}

func TestAppErrorErrorsIsAndAs(t *testing.T) {
	sentinel := errors.New("sentinel")
	appErr := NewAppError(ErrCodeSecretMalformed, "bad payload", sentinel)
	chained := fmt.Errorf("loading creds: %w", appErr)

	if !errors.Is(chained, sentinel) {
		t.Error("errors.Is should find the underlying error through AppError")
	}

	var target *AppError
	if !errors.As(chained, &target) {
		t.Fatal("errors.As should find AppError in the chain")
	}
	if target.Code != ErrCodeSecretMalformed {
		t.Errorf("extracted Code = %q, want %q", target.Code, ErrCodeSecretMalformed)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain error", context.Canceled, ErrCodeInternalUnexpected},
		{"app error", NewAppError(ErrCodeSecretAccessDenied, "denied", nil), ErrCodeSecretAccessDenied},
		{"wrapped app error", fmt.Errorf("x: %w", NewAppError(ErrCodeSecretNotFound, "gone", nil)), ErrCodeSecretNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}

	if IsCode(nil, "") {
		t.Error("IsCode(nil, \"\") should be false")
	}
}

func TestErrorCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeSecretNotFound, http.StatusNotFound},
		{ErrCodeSecretAccessDenied, http.StatusForbidden},
		{ErrCodeSecretNoStringPayload, http.StatusUnprocessableEntity},
		{ErrCodeSecretMalformed, http.StatusUnprocessableEntity},
		{ErrCodeSecretStoreUnavailable, http.StatusBadGateway},
		{ErrCodeMetadataUnavailable, http.StatusBadGateway},
		{ErrCodeInternalUnexpected, http.StatusInternalServerError},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", tt.code, got, tt.want)
		}
	}
}
