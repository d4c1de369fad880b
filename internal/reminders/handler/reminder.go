package handler

import (
	"net/http"

	"salonbook/internal/reminders/service"
	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type ReminderHandler struct {
	drainer service.Drainer
	cron    *middleware.SecretGuard
	log     *logger.Logger
}

func NewReminderHandler(d service.Drainer, cron *middleware.SecretGuard, log *logger.Logger) *ReminderHandler {
	return &ReminderHandler{drainer: d, cron: cron, log: log}
}

func (h *ReminderHandler) Drain(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	processed, err := h.drainer.Drain(r.Context())
	if err != nil {
		h.log.Error("Reminder drain failed", "processed", processed, "error", err)
		if writeErr := httputil.WriteError(w, apperrors.Internal("Reminder drain failed", err).WithDetails(map[string]any{
			"processed": processed,
		})); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Drain", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]int{"processed": processed}); err != nil {
		h.log.Error("failed to write success response", "handler", "Drain", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReminderHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/cron/reminders/drain", h.cron.Wrap(h.Drain))
}
