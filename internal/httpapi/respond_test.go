package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"k": "v"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Nil(t, resp.Error)
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusUnauthorized, "TOKEN_REVOKED", "token has been revoked")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TOKEN_REVOKED", resp.Error.Code)
	assert.Equal(t, "token has been revoked", resp.Message)
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	var b body
	require.NoError(t, DecodeJSON(req, &b, false))
	assert.Equal(t, "x", b.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.Error(t, DecodeJSON(req, &body{}, false))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, DecodeJSON(req, &body{}, true))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
	require.Error(t, DecodeJSON(req, &body{}, true))
}
