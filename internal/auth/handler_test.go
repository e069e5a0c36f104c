// AngelaMos | 2026
// handler_test.go

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

	"github.com/carterperez-dev/templates/account-service/internal/middleware"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newAuthRouter(f *authFixture) chi.Router {
	r := chi.NewRouter()
	NewHandler(f.service).RegisterRoutes(r, middleware.Authenticator(f.service), nil)
	return r
}

func call(
	t *testing.T,
	router http.Handler,
	method, path, token, body string,
) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func TestHandler_LoginFlow(t *testing.T) {
	f := newAuthFixture(t)
	router := newAuthRouter(f)

	rec, resp := call(t, router, http.MethodPost, "/auth/login", "",
		`{"email":"budi@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var auth AuthResponse
	require.NoError(t, json.Unmarshal(resp.Data, &auth))
	token := auth.Tokens.AccessToken

	rec, resp = call(t, router, http.MethodGet, "/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me UserResponse
	require.NoError(t, json.Unmarshal(resp.Data, &me))
	assert.Equal(t, "Budi Santoso", me.Name)

	rec, _ = call(t, router, http.MethodPost, "/auth/logout", token,
		`{"refresh_token":"`+auth.Tokens.RefreshToken+`"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, resp = call(t, router, http.MethodGet, "/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REVOKED", resp.Error.Code)
}

func TestHandler_LoginErrors(t *testing.T) {
	f := newAuthFixture(t)
	router := newAuthRouter(f)

	rec, resp := call(t, router, http.MethodPost, "/auth/login", "",
		`{"email":"budi@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	rec, resp = call(t, router, http.MethodPost, "/auth/login", "", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	f.users.set(func(u *UserInfo) { u.Active = false })
	rec, resp = call(t, router, http.MethodPost, "/auth/login", "",
		`{"email":"budi@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ACCOUNT_INACTIVE", resp.Error.Code)
}

func TestHandler_RefreshReuse(t *testing.T) {
	f := newAuthFixture(t)
	router := newAuthRouter(f)
	first := f.login(t)

	body := `{"refresh_token":"` + first.Tokens.RefreshToken + `"}`

	rec, _ := call(t, router, http.MethodPost, "/auth/refresh", "", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := call(t, router, http.MethodPost, "/auth/refresh", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REUSE_DETECTED", resp.Error.Code)
}

func TestHandler_Sessions(t *testing.T) {
	f := newAuthFixture(t)
	router := newAuthRouter(f)
	token := f.login(t).Tokens.AccessToken

	rec, resp := call(t, router, http.MethodGet, "/auth/sessions", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sessions SessionsResponse
	require.NoError(t, json.Unmarshal(resp.Data, &sessions))
	require.Len(t, sessions.Sessions, 1)

	rec, _ = call(t, router, http.MethodDelete, "/auth/sessions/does-not-exist", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = call(t, router, http.MethodDelete, "/auth/sessions/"+sessions.Sessions[0].ID, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = call(t, router, http.MethodPost, "/auth/logout-all", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = call(t, router, http.MethodGet, "/auth/sessions", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
