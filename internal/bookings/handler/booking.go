package handler

import (
	"net/http"

	"salonbook/internal/bookings/service"
	"salonbook/pkg/clock"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	clock   *clock.Normalizer
	admin   *middleware.SecretGuard
	log     *logger.Logger
}

func NewBookingHandler(svc service.BookingService, n *clock.Normalizer, admin *middleware.SecretGuard, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: svc,
		clock:   n,
		admin:   admin,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, NewView(h.clock, booking)); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, NewView(h.clock, booking)); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListPending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.ListPending(r.Context(), h.clock.Now())
	if err != nil {
		h.writeError(w, "ListPending", err)
		return
	}

	if err := httputil.WriteSuccess(w, NewViews(h.clock, bookings)); err != nil {
		h.log.Error("failed to write success response", "handler", "ListPending", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListForUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListForUser", err)
		return
	}

	bookings, err := h.service.ListForUser(r.Context(), ps.ByName("userId"), limit, offset)
	if err != nil {
		h.writeError(w, "ListForUser", err)
		return
	}

	if err := httputil.WriteSuccess(w, NewViews(h.clock, bookings)); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForUser", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.StatusUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), req.Status)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, NewView(h.clock, booking)); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings", h.Create)
	router.GET("/api/bookings/user/:userId", h.ListForUser)

	router.GET("/api/admin/bookings/pending", h.admin.Wrap(h.ListPending))
	router.GET("/api/admin/bookings/id/:id", h.admin.Wrap(h.GetByID))
	router.PATCH("/api/admin/bookings/id/:id/status", h.admin.Wrap(h.UpdateStatus))
}
