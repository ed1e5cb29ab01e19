package account

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
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	accounts, err := h.uc.List(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OK(w, accounts)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())

	var p CreateParams
	if err := httpapi.DecodeJSON(r, &p, false); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if p.Name == "" {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "account name is required")
		return
	}

	a, err := h.uc.Create(r.Context(), id.UserID, p)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OKMessage(w, "Account created", a)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	accountID, err := pathID(r)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid account id")
		return
	}

	a, err := h.uc.Get(r.Context(), id.UserID, accountID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OK(w, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	accountID, err := pathID(r)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid account id")
		return
	}

	var p UpdateParams
	if err := httpapi.DecodeJSON(r, &p, false); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	a, err := h.uc.Update(r.Context(), id.UserID, accountID, p)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OKMessage(w, "Account updated", a)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	accountID, err := pathID(r)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid account id")
		return
	}

	if err := h.uc.Delete(r.Context(), id.UserID, accountID); err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OKMessage(w, "Account deleted", nil)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpapi.Fail(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		httpapi.Fail(w, http.StatusForbidden, "ACCESS_DENIED", err.Error())
	case errors.Is(err, ErrNameTaken), errors.Is(err, ErrInvalidType):
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		h.log.Error("account request failed", zap.Error(err))
		httpapi.Fail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
