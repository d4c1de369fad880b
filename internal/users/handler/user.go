package handler

import (
	"net/http"

	"salonbook/internal/users/service"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(svc service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{service: svc, log: log}
}

func (h *UserHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	registered, err := h.service.IsRegistered(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		h.writeError(w, "Check", err)
		return
	}
	if err := httputil.WriteSuccess(w, map[string]bool{"registered": registered}); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}
	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "Register", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/users/check", h.Check)
	router.PUT("/api/users", h.Register)
}
