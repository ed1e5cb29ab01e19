package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finkeeper/finkeeper/internal/httpapi"
)

func newTestRouter(t *testing.T) (chi.Router, *Usecase, *fakeUsers, *fakeRevoked) {
	t.Helper()
	uc, users, revoked, codec := newTestUsecase(t)

	r := chi.NewRouter()
	r.Use(RequestAuth(codec, revoked, users, nil, zap.NewNop()))
	r.Route("/api/auth", NewHandler(uc, zap.NewNop()).Routes)
	return r, uc, users, revoked
}

func doJSON(t *testing.T, r http.Handler, method, path, body, bearerToken string) (*httptest.ResponseRecorder, httpapi.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp httpapi.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandler_Login(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	rec, resp := doJSON(t, r, http.MethodPost, "/api/auth/google", `{"idToken":"tok"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Login successful", resp.Message)

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])
	assert.Equal(t, float64(900), data["expiresIn"])
}

func TestHandler_Login_MissingToken(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	rec, resp := doJSON(t, r, http.MethodPost, "/api/auth/google", `{}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestHandler_RefreshFlow(t *testing.T) {
	r, uc, _, _ := newTestRouter(t)

	sess, err := uc.LoginWithGoogle(t.Context(), "tok")
	require.NoError(t, err)

	rec, resp := doJSON(t, r, http.MethodPost, "/api/auth/refresh",
		`{"refreshToken":"`+sess.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, sess.RefreshToken, data["refreshToken"])
}

func TestHandler_Refresh_WrongKind(t *testing.T) {
	r, uc, _, _ := newTestRouter(t)

	sess, err := uc.LoginWithGoogle(t.Context(), "tok")
	require.NoError(t, err)

	rec, resp := doJSON(t, r, http.MethodPost, "/api/auth/refresh",
		`{"refreshToken":"`+sess.AccessToken+`"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_TOKEN_TYPE", resp.Error.Code)
}

func TestHandler_Refresh_Revoked(t *testing.T) {
	r, uc, _, revoked := newTestRouter(t)

	sess, err := uc.LoginWithGoogle(t.Context(), "tok")
	require.NoError(t, err)
	require.NoError(t, revoked.Revoke(t.Context(), sess.RefreshToken))

	rec, resp := doJSON(t, r, http.MethodPost, "/api/auth/refresh",
		`{"refreshToken":"`+sess.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REVOKED", resp.Error.Code)
}

func TestHandler_Logout(t *testing.T) {
	r, uc, _, revoked := newTestRouter(t)

	sess, err := uc.LoginWithGoogle(t.Context(), "tok")
	require.NoError(t, err)

	rec, resp := doJSON(t, r, http.MethodPost, "/api/auth/logout",
		`{"refreshToken":"`+sess.RefreshToken+`"}`, sess.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "alice@example.com", data["email"])

	for _, tok := range []string{sess.AccessToken, sess.RefreshToken} {
		isRevoked, err := revoked.IsRevoked(t.Context(), tok)
		require.NoError(t, err)
		assert.True(t, isRevoked)
	}
}

func TestHandler_Logout_NoBearer(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	rec, resp := doJSON(t, r, http.MethodPost, "/api/auth/logout", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestHandler_Logout_EmptyBodyAllowed(t *testing.T) {
	r, uc, _, _ := newTestRouter(t)

	sess, err := uc.LoginWithGoogle(t.Context(), "tok")
	require.NoError(t, err)

	rec, resp := doJSON(t, r, http.MethodPost, "/api/auth/logout", "", sess.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestHandler_Me(t *testing.T) {
	r, uc, _, _ := newTestRouter(t)

	rec, resp := doJSON(t, r, http.MethodGet, "/api/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	sess, err := uc.LoginWithGoogle(t.Context(), "tok")
	require.NoError(t, err)

	rec, resp = doJSON(t, r, http.MethodGet, "/api/auth/me", "", sess.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "alice@example.com", data["email"])
}
