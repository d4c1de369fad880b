package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "salonbook/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"conflict", apperrors.Conflict("slot taken"), http.StatusConflict, apperrors.CodeConflict, "slot taken"},
		{"validation", apperrors.Validation("bad date", nil), http.StatusBadRequest, apperrors.CodeValidation, "bad date"},
		{"upstream", apperrors.Upstream("calendar", errors.New("x")), http.StatusInternalServerError, apperrors.CodeUpstream, "calendar request failed"},
		{"plain error is hidden", errors.New("secret db detail"), http.StatusInternalServerError, apperrors.CodeInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := WriteError(w, tt.err); err != nil {
				t.Fatalf("WriteError returned %v", err)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode || body.Error != tt.wantMsg {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"", DefaultPageLimit, 0, false},
		{"limit=5&offset=10", 5, 10, false},
		{"limit=1000", MaxPageLimit, 0, false},
		{"offset=-3", DefaultPageLimit, 0, false},
		{"limit=abc", 0, 0, true},
		{"offset=1.5", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Status string `json:"status"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"confirmed"}`))
	if err := DecodeJSON(r, &dst); err != nil || dst.Status != "confirmed" {
		t.Errorf("DecodeJSON = %v, %+v", err, dst)
	}

	for _, body := range []string{"", "{", `{"status":"a"} {"status":"b"}`} {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSON(r, &dst)
		if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Errorf("DecodeJSON(%q) = %v, want INVALID_INPUT", body, err)
		}
	}
}
