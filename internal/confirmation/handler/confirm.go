package handler

import (
	"net/http"

	bookingshandler "salonbook/internal/bookings/handler"
	"salonbook/internal/confirmation/service"
	"salonbook/pkg/clock"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ResultView struct {
	BookingID       string                      `json:"bookingId"`
	CalendarLink    string                      `json:"calendarLink,omitempty"`
	ReminderCreated bool                        `json:"reminderCreated"`
	ReminderID      string                      `json:"reminderId,omitempty"`
	Booking         bookingshandler.BookingView `json:"booking"`
}

type ConfirmHandler struct {
	service service.ConfirmationService
	clock   *clock.Normalizer
	admin   *middleware.SecretGuard
	log     *logger.Logger
}

func NewConfirmHandler(svc service.ConfirmationService, n *clock.Normalizer, admin *middleware.SecretGuard, log *logger.Logger) *ConfirmHandler {
	return &ConfirmHandler{service: svc, clock: n, admin: admin, log: log}
}

func (h *ConfirmHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.ConfirmRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.service.Confirm(r.Context(), ps.ByName("id"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	view := ResultView{
		BookingID:       res.BookingID,
		CalendarLink:    res.CalendarLink,
		ReminderCreated: res.ReminderCreated,
		ReminderID:      res.ReminderID,
		Booking:         bookingshandler.NewView(h.clock, res.Booking),
	}
	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ConfirmHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Confirm", "operation", "WriteError", "error", writeErr)
	}
}

func (h *ConfirmHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/admin/bookings/id/:id/confirm", h.admin.Wrap(h.Confirm))
}
