package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/civic-sync/internal/model"
)

// openSessions is a SessionChecker backed by a set.
type openSessions map[string]bool

func (s openSessions) IsAuthenticated(userID string) bool { return s[userID] }

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			w.Write([]byte("anonymous"))
			return
		}
		w.Write([]byte(id.UserID + ":" + string(id.Role)))
	})
}

func requestWithToken(t *testing.T, ts *TokenService, id Identity) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	token, err := ts.Generate(id)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	return req
}

func decodeDenial(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	sessions := openSessions{"1": true}
	h := RequireAuth(ts, sessions)(echoIdentity())

	t.Run("valid session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithToken(t, ts, citizen))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1:citizen", rec.Body.String())
	})

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, LoginRedirect, decodeDenial(t, rec)["redirect"])
	})

	t.Run("logged out", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithToken(t, ts, Identity{UserID: "2", Role: model.RoleCitizen}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	ts := newTestTokenService(t)
	sessions := openSessions{"1": true, "admin1": true}
	h := RequireAuth(ts, sessions)(RequireAdmin(echoIdentity()))

	t.Run("admin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithToken(t, ts, Identity{UserID: "admin1", Role: model.RoleAdmin}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin1:admin", rec.Body.String())
	})

	t.Run("citizen", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithToken(t, ts, citizen))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeDenial(t, rec)
		assert.Equal(t, "forbidden", body["error"])
		assert.Equal(t, AdminLoginRedirect, body["redirect"])
	})

	t.Run("without RequireAuth", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAdmin(echoIdentity()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, AdminLoginRedirect, decodeDenial(t, rec)["redirect"])
	})
}

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	h := OptionalAuth(ts, openSessions{"1": true})(echoIdentity())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithToken(t, ts, citizen))
	assert.Equal(t, "1:citizen", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithToken(t, ts, Identity{UserID: "closed"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}
