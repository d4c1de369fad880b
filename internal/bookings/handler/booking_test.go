package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salonbook/pkg/clock"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	createFunc       func(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	getFunc          func(ctx context.Context, id string) (*model.Booking, error)
	listPendingFunc  func(ctx context.Context, now time.Time) ([]*model.Booking, error)
	listForUserFunc  func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	updateStatusFunc func(ctx context.Context, id, status string) (*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	return m.createFunc(ctx, req)
}

func (m *mockBookingService) Get(ctx context.Context, id string) (*model.Booking, error) {
	return m.getFunc(ctx, id)
}

func (m *mockBookingService) ListPending(ctx context.Context, now time.Time) ([]*model.Booking, error) {
	return m.listPendingFunc(ctx, now)
}

func (m *mockBookingService) ListForUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	return m.listForUserFunc(ctx, userID, limit, offset)
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	return m.updateStatusFunc(ctx, id, status)
}

const adminSecret = "staff-only"

func newRouter(t *testing.T, svc *mockBookingService) *httprouter.Router {
	t.Helper()
	loc, err := clock.LoadLocation("Asia/Taipei")
	if err != nil {
		t.Fatal(err)
	}
	log := logger.Discard()
	h := NewBookingHandler(svc, clock.NewWithNow(loc, time.Now), middleware.NewSecretGuard(middleware.AdminSecretHeader, adminSecret, log), log)
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func sampleBooking() *model.Booking {
	return &model.Booking{
		ID:            "64b7f0c2a1b2c3d4e5f60700",
		UserID:        "U1",
		RequestedDate: "2025-08-21",
		RequestedTime: "14:30",
		RequestedAt:   time.Date(2025, 8, 21, 6, 30, 0, 0, time.UTC),
		ServiceIDs:    []string{"64b7f0c2a1b2c3d4e5f60718"},
		Status:        model.BookingPending,
	}
}

func TestCreateHandler(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(_ context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
			if req.UserProfile.UserID != "U1" || req.Date != "2025-08-21" || len(req.ServiceIDs) != 1 {
				t.Errorf("decoded request = %+v", req)
			}
			return sampleBooking(), nil
		},
	}
	router := newRouter(t, svc)

	body := `{"userProfile":{"userId":"U1","displayName":"Amy"},"date":"2025-08-21","time":"14:30","serviceIds":["64b7f0c2a1b2c3d4e5f60718"]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		Data BookingView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Status != "pending" {
		t.Errorf("status = %q", resp.Data.Status)
	}
	if resp.Data.RequestedAt.Instant != "2025-08-21T06:30:00Z" {
		t.Errorf("instant = %q", resp.Data.RequestedAt.Instant)
	}
	if resp.Data.RequestedAt.Local != "2025-08-21T14:30:00+08:00" || resp.Data.RequestedAt.Time != "14:30" {
		t.Errorf("local rendering = %+v", resp.Data.RequestedAt)
	}
	if resp.Data.FinalStartAt != nil || resp.Data.Calendar != nil {
		t.Error("pending booking should not carry confirmation fields")
	}
}

func TestCreateHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"empty body", ``, nil, http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"validation", `{}`, apperrors.Validation("owner identity is required", nil), http.StatusBadRequest, apperrors.CodeValidation},
		{"conflict", `{}`, apperrors.Conflict("You already have a booking at this time"), http.StatusConflict, apperrors.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				createFunc: func(context.Context, *model.CreateBookingRequest) (*model.Booking, error) {
					return nil, tt.svcErr
				},
			}
			rec := httptest.NewRecorder()
			newRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp map[string]any
			_ = json.NewDecoder(rec.Body).Decode(&resp)
			if resp["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", resp["code"], tt.wantCode)
			}
		})
	}
}

func TestAdminRoutesRequireSecret(t *testing.T) {
	svc := &mockBookingService{
		listPendingFunc: func(context.Context, time.Time) ([]*model.Booking, error) {
			return []*model.Booking{sampleBooking()}, nil
		},
	}
	router := newRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/bookings/pending", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without secret: status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/bookings/pending", nil)
	req.Header.Set(middleware.AdminSecretHeader, adminSecret)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with secret: status = %d", rec.Code)
	}

	var resp struct {
		Data []BookingView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestUpdateStatusHandler(t *testing.T) {
	svc := &mockBookingService{
		updateStatusFunc: func(_ context.Context, id, status string) (*model.Booking, error) {
			if status != "completed" {
				return nil, apperrors.InvalidState("Cannot change booking from pending to " + status)
			}
			b := sampleBooking()
			b.ID = id
			b.Status = model.BookingCompleted
			return b, nil
		},
	}
	router := newRouter(t, svc)

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/bookings/id/64b7f0c2a1b2c3d4e5f60700/status", strings.NewReader(body))
		req.Header.Set(middleware.AdminSecretHeader, adminSecret)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(`{"status":"completed"}`); rec.Code != http.StatusOK {
		t.Errorf("completed: status = %d, body = %s", rec.Code, rec.Body)
	}
	if rec := send(`{"status":"archived"}`); rec.Code != http.StatusConflict {
		t.Errorf("invalid transition: status = %d", rec.Code)
	}
}

func TestListForUserHandler(t *testing.T) {
	svc := &mockBookingService{
		listForUserFunc: func(_ context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
			if userID != "U1" || limit != 5 || offset != 10 {
				t.Errorf("args = %s %d %d", userID, limit, offset)
			}
			return nil, nil
		},
	}
	rec := httptest.NewRecorder()
	newRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookings/user/U1?limit=5&offset=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("empty list should render as [] : %s", rec.Body)
	}
}
