package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "booking not found"},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeUpstream,
				Message: "calendar request failed",
				Err:     errors.New("deadline exceeded"),
			},
			expected: "UPSTREAM_ERROR: calendar request failed (caused by: deadline exceeded)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad date", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad duration"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing secret"), CodeUnauthorized, http.StatusUnauthorized},
		{"conflict", Conflict("slot taken"), CodeConflict, http.StatusConflict},
		{"invalid state", InvalidState("booking is canceled"), CodeInvalidState, http.StatusConflict},
		{"upstream", Upstream("calendar", cause), CodeUpstream, http.StatusInternalServerError},
		{"internal", Internal("db down", cause), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("LINE"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "abc")

	if err.Details["id"] != "abc" || err.Details["resource"] != "Booking" {
		t.Errorf("unexpected details: %v", err.Details)
	}
	if err.Message != "Booking not found" {
		t.Errorf("unexpected message: %s", err.Message)
	}
}

func TestUpstream_UnwrapsCause(t *testing.T) {
	cause := errors.New("calendar quota exceeded")
	err := Upstream("calendar", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Details["provider"] != "calendar" {
		t.Errorf("expected provider detail, got %v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("slot taken")
	wrapped := fmt.Errorf("create booking: %w", appErr)
	plain := errors.New("plain")

	if got := AsAppError(wrapped); got != appErr {
		t.Error("AsAppError should find a wrapped AppError")
	}

	got := AsAppError(plain)
	if got.Code != CodeInternal || got.Err != plain {
		t.Errorf("AsAppError(plain) = %+v", got)
	}

	if !IsAppError(wrapped) || IsAppError(plain) {
		t.Error("IsAppError mismatch")
	}
	if !HasCode(wrapped, CodeConflict) || HasCode(wrapped, CodeNotFound) {
		t.Error("HasCode mismatch")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	body := string(NotFoundWithID("Reminder", "r1").ToJSON())

	for _, want := range []string{`"code":"NOT_FOUND"`, `"message":"Reminder not found"`, `"id":"r1"`} {
		if !strings.Contains(body, want) {
			t.Errorf("ToJSON() = %s, missing %s", body, want)
		}
	}
}
