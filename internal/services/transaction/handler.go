package transaction

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())

	from, to, err := dateRange(r)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid date range")
		return
	}

	txs, err := h.uc.List(r.Context(), id.UserID, from, to)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OK(w, txs)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())

	var p CreateParams
	if err := httpapi.DecodeJSON(r, &p, false); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	t, err := h.uc.Create(r.Context(), id.UserID, p)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OKMessage(w, "Transaction created", t)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())

	from, to, err := dateRange(r)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid date range")
		return
	}

	s, err := h.uc.Summarize(r.Context(), id.UserID, from, to)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OK(w, s)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	txID, err := pathID(r)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid transaction id")
		return
	}

	t, err := h.uc.Get(r.Context(), id.UserID, txID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OK(w, t)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := domainauth.IdentityFromContext(r.Context())
	txID, err := pathID(r)
	if err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid transaction id")
		return
	}

	if err := h.uc.Delete(r.Context(), id.UserID, txID); err != nil {
		h.fail(w, err)
		return
	}
	httpapi.OKMessage(w, "Transaction deleted", nil)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAccountUnknown), errors.Is(err, ErrCategoryUnknown):
		httpapi.Fail(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		httpapi.Fail(w, http.StatusForbidden, "ACCESS_DENIED", err.Error())
	case errors.Is(err, ErrInvalidKind), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrKindMismatch):
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		h.log.Error("transaction request failed", zap.Error(err))
		httpapi.Fail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

// dateRange parses optional ?from= and ?to= query params, accepting either
// a date (2006-01-02) or a full RFC 3339 timestamp.
func dateRange(r *http.Request) (from, to time.Time, err error) {
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = parseDate(v); err != nil {
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = parseDate(v); err != nil {
			return
		}
	}
	return
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
