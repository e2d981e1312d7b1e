package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/civic-sync/internal/auth"
	"github.com/sakif/civic-sync/internal/handler"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/store"
)

func sessionCookie(t *testing.T, rr interface{ Result() *http.Response }) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestAuthHandler_AdminLoginAnyCredentials(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.auth.HandleAdminLogin, request{
		method: http.MethodPost, target: "/auth/admin/login",
		body: map[string]string{"email": "whoever@example.com", "password": "x", "adminCode": testAdminCode},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	user := decode[model.User](t, rr)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.Equal(t, store.MockAdminID, user.ID)

	cookie := sessionCookie(t, rr)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	id, err := env.tokens.Validate(cookie.Value)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
}

func TestAuthHandler_AdminLoginNeedsAdminCode(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]string{
		{"email": "whoever@example.com", "password": "x"},
		{"email": "whoever@example.com", "password": "x", "adminCode": "letmein"},
	} {
		rr := serve(env.auth.HandleAdminLogin, request{
			method: http.MethodPost, target: "/auth/admin/login", body: body,
		})
		require.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())
		assert.Equal(t, "forbidden", decode[handler.ErrorResponse](t, rr).Error)
		assert.Empty(t, rr.Result().Cookies())
	}
}

func TestAuthHandler_CitizenLoginCannotAskForAdmin(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.auth.HandleLogin, request{
		method: http.MethodPost, target: "/auth/login",
		body: map[string]string{"email": "r@example.com", "password": "x", "role": "admin"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	user := decode[model.User](t, rr)
	assert.Equal(t, model.RoleCitizen, user.Role)
	assert.Equal(t, store.MockCitizenID, user.ID)

	id, err := env.tokens.Validate(sessionCookie(t, rr).Value)
	require.NoError(t, err)
	assert.False(t, id.IsAdmin())
}

func TestAuthHandler_CitizenLoginKeepsRole(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.auth.HandleLogin, request{
		method: http.MethodPost, target: "/auth/login",
		body: map[string]string{"email": "r@example.com", "password": "x", "role": "resolver"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	user := decode[model.User](t, rr)
	assert.Equal(t, model.RoleResolver, user.Role)
	assert.Equal(t, "Rahul Sharma", user.Name)
}

func TestAuthHandler_RegisterThenMe(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.auth.HandleRegister, request{
		method: http.MethodPost, target: "/auth/register",
		body: map[string]string{"name": "Priya Verma", "email": "priya@example.com", "password": "secret-pass"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	user := decode[model.User](t, rr)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, model.RoleCitizen, user.Role)
	assert.Zero(t, user.BadgeCount)
	assert.Zero(t, user.VolunteerHours)

	id, err := env.tokens.Validate(sessionCookie(t, rr).Value)
	require.NoError(t, err)

	rr = serve(env.auth.HandleMe, request{method: http.MethodGet, target: "/api/me", as: &id})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Priya Verma", decode[model.User](t, rr).Name)
}

func TestAuthHandler_LogoutClosesSession(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.auth.HandleLogin, request{
		method: http.MethodPost, target: "/auth/login",
		body: map[string]string{"email": "r@example.com", "password": "x"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	id, err := env.tokens.Validate(sessionCookie(t, rr).Value)
	require.NoError(t, err)

	rr = serve(env.auth.HandleLogout, request{method: http.MethodPost, target: "/auth/logout", as: &id})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, -1, sessionCookie(t, rr).MaxAge)

	rr = serve(env.auth.HandleMe, request{method: http.MethodGet, target: "/api/me", as: &id})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "unauthorized", decode[handler.ErrorResponse](t, rr).Error)
}

func TestAuthHandler_LogoutWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.auth.HandleLogout, request{method: http.MethodPost, target: "/auth/logout"})
	assert.Equal(t, http.StatusOK, rr.Code)
}
