package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domainauth "github.com/finkeeper/finkeeper/internal/domain/auth"
	"github.com/finkeeper/finkeeper/internal/httpapi"
)

type Handler struct {
	uc  *Usecase
	log *zap.Logger
}

func NewHandler(uc *Usecase, log *zap.Logger) *Handler {
	return &Handler{uc: uc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/profile", h.profile)
	r.Put("/profile", h.updateProfile)
	r.Delete("/profile", h.deactivate)
	r.Put("/{id}/activate", h.activate)
	r.Get("/stats", h.stats)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	usr, err := h.uc.Get(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OK(w, usr)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())

	var p UpdateParams
	if err := httpapi.DecodeJSON(r, &p, false); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	usr, err := h.uc.UpdateProfile(r.Context(), id.UserID, p)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OKMessage(w, "Profile updated", usr)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	if err := h.uc.Deactivate(r.Context(), id.UserID); err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OKMessage(w, "Account deactivated", nil)
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid user id")
		return
	}

	if err := h.uc.Activate(r.Context(), userID); err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OKMessage(w, "Account activated", nil)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	s, err := h.uc.Stats(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OK(w, s)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpapi.Fail(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", err.Error())
		return
	}
	h.log.Error("user request failed", zap.Error(err))
	httpapi.Fail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
}
