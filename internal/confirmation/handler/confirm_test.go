package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salonbook/internal/confirmation/service"
	"salonbook/pkg/clock"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockConfirmer struct {
	confirmFunc func(ctx context.Context, id string, req model.ConfirmRequest) (*service.Result, error)
}

func (m *mockConfirmer) Confirm(ctx context.Context, id string, req model.ConfirmRequest) (*service.Result, error) {
	return m.confirmFunc(ctx, id, req)
}

func newRouter(t *testing.T, svc *mockConfirmer) *httprouter.Router {
	t.Helper()
	loc, err := clock.LoadLocation("Asia/Taipei")
	if err != nil {
		t.Fatal(err)
	}
	log := logger.Discard()
	h := NewConfirmHandler(svc, clock.NewWithNow(loc, time.Now), middleware.NewSecretGuard(middleware.AdminSecretHeader, "staff", log), log)
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func TestConfirm(t *testing.T) {
	start := time.Date(2025, 8, 22, 7, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name       string
		secret     string
		err        error
		wantStatus int
	}{
		{"unauthorized", "", nil, http.StatusUnauthorized},
		{"confirmed", "staff", nil, http.StatusOK},
		{"calendar failure", "staff", apperrors.Upstream("calendar", nil).WithDetails(map[string]any{"step": "calendar"}), http.StatusInternalServerError},
		{"not confirmable", "staff", apperrors.InvalidState("Cannot confirm a canceled booking"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			var gotReq model.ConfirmRequest
			svc := &mockConfirmer{confirmFunc: func(ctx context.Context, id string, req model.ConfirmRequest) (*service.Result, error) {
				gotID, gotReq = id, req
				if tt.err != nil {
					return nil, tt.err
				}
				return &service.Result{
					BookingID:       id,
					CalendarLink:    "https://calendar.example/evt",
					ReminderCreated: true,
					ReminderID:      "r1",
					Booking: &model.Booking{
						ID:           id,
						Status:       model.BookingConfirmed,
						FinalStartAt: &start,
						FinalEndAt:   &end,
						ReminderID:   "r1",
					},
				}, nil
			}}

			req := httptest.NewRequest(http.MethodPost, "/api/admin/bookings/id/b1/confirm",
				strings.NewReader(`{"finalStart":"2025-08-22T15:00","durationMinutes":90}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.secret != "" {
				req.Header.Set(middleware.AdminSecretHeader, tt.secret)
			}
			rec := httptest.NewRecorder()
			newRouter(t, svc).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			if gotID != "b1" || gotReq.FinalStart != "2025-08-22T15:00" || gotReq.DurationMinutes == nil || *gotReq.DurationMinutes != 90 {
				t.Errorf("service got id=%q req=%+v", gotID, gotReq)
			}

			var body struct {
				Data struct {
					BookingID       string `json:"bookingId"`
					ReminderCreated bool   `json:"reminderCreated"`
					Booking         struct {
						FinalStartAt struct {
							Local string `json:"local"`
						} `json:"finalStartAt"`
					} `json:"booking"`
				} `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Data.BookingID != "b1" || !body.Data.ReminderCreated {
				t.Errorf("body = %+v", body.Data)
			}
			if body.Data.Booking.FinalStartAt.Local != "2025-08-22T15:00:00+08:00" {
				t.Errorf("local = %q", body.Data.Booking.FinalStartAt.Local)
			}
		})
	}
}
