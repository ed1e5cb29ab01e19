package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	tokens "github.com/finkeeper/finkeeper/internal/auth"
	domainauth "github.com/finkeeper/finkeeper/internal/domain/auth"
	"github.com/finkeeper/finkeeper/internal/httpapi"
	"github.com/finkeeper/finkeeper/internal/obs"
)

type Handler struct {
	uc  *Usecase
	log *zap.Logger
}

func NewHandler(uc *Usecase, log *zap.Logger) *Handler {
	return &Handler{uc: uc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/google", h.loginWithGoogle)
	r.Post("/refresh", h.refresh)
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
}

type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutResponse struct {
	Email *string `json:"email"`
}

func (h *Handler) loginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := httpapi.DecodeJSON(r, &req, false); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	sess, err := h.uc.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	obs.WithTrace(r.Context(), h.log).Info("auth.login", zap.Int64("user_id", sess.UserID))
	httpapi.OKMessage(w, "Login successful", sess)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpapi.DecodeJSON(r, &req, false); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	sess, err := h.uc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpapi.OKMessage(w, "Token refreshed successfully", sess)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	access := bearer(r)
	if access == "" {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "no token provided")
		return
	}

	var req logoutRequest
	if err := httpapi.DecodeJSON(r, &req, true); err != nil {
		httpapi.Fail(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	email := h.uc.Logout(r.Context(), access, req.RefreshToken)

	resp := logoutResponse{}
	if email != "" {
		resp.Email = &email
	}
	obs.WithTrace(r.Context(), h.log).Info("auth.logout", zap.String("email", email))
	httpapi.OKMessage(w, "Logged out successfully", resp)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	usr, err := h.uc.CurrentUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.OK(w, usr)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapErr(err)
	if status == http.StatusInternalServerError {
		obs.WithTrace(r.Context(), h.log).Error("auth request failed", zap.Error(err))
		httpapi.Fail(w, status, code, "authentication failed")
		return
	}
	httpapi.Fail(w, status, code, err.Error())
}

func mapErr(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, tokens.ErrInvalidIDToken):
		return http.StatusBadRequest, "INVALID_ID_TOKEN"
	case errors.Is(err, tokens.ErrEmailNotVerified):
		return http.StatusBadRequest, "EMAIL_NOT_VERIFIED"
	case errors.Is(err, ErrTokenRevoked):
		return http.StatusUnauthorized, "TOKEN_REVOKED"
	case errors.Is(err, ErrWrongTokenType):
		return http.StatusBadRequest, "INVALID_TOKEN_TYPE"
	case errors.Is(err, ErrTokenInvalid):
		return http.StatusUnauthorized, "TOKEN_EXPIRED"
	case errors.Is(err, ErrAccountInactive):
		return http.StatusUnauthorized, "ACCOUNT_INACTIVE"
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, "RESOURCE_NOT_FOUND"
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	default:
		return http.StatusInternalServerError, "AUTH_ERROR"
	}
}

// RequireIdentity is the route-level policy for protected endpoints: the
// auth middleware only attaches identities, this is what turns a missing
// one into a 401.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := domainauth.IdentityFromContext(r.Context()); !ok {
			httpapi.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED",
				"Not authenticated. Please provide valid Bearer token.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
