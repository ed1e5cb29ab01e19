package category

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domainauth "github.com/finkeeper/finkeeper/internal/domain/auth"
	"github.com/finkeeper/finkeeper/internal/domain/category"
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
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())

	kind := category.Kind(r.URL.Query().Get("type"))
	if kind != "" && !kind.Valid() {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid category type")
		return
	}

	cats, err := h.uc.List(r.Context(), id.UserID, kind)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OK(w, cats)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())

	var p CreateParams
	if err := httpapi.DecodeJSON(r, &p, false); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if p.Name == "" {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "category name is required")
		return
	}

	c, err := h.uc.Create(r.Context(), id.UserID, p)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OKMessage(w, "Category created", c)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	catID, err := pathID(r)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid category id")
		return
	}

	c, err := h.uc.Get(r.Context(), id.UserID, catID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OK(w, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	catID, err := pathID(r)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid category id")
		return
	}

	if err := h.uc.Delete(r.Context(), id.UserID, catID); err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OKMessage(w, "Category deleted", nil)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpapi.Fail(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		httpapi.Fail(w, http.StatusForbidden, "ACCESS_DENIED", err.Error())
	case errors.Is(err, ErrNameTaken), errors.Is(err, ErrInvalidKind):
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		h.log.Error("category request failed", zap.Error(err))
		httpapi.Fail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
