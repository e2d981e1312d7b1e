package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

// CookieName is the HttpOnly cookie that carries the session token.
const CookieName = "token"

// Where the client should send a user who fails a guard.
const (
	LoginRedirect      = "/login"
	AdminLoginRedirect = "/admin/login"
)

// contextKey is unexported so no other package can read or overwrite the
// identity stored in a request context.
type contextKey string

const identityKey contextKey = "identity"

// SessionChecker reports whether a user still has an open session.
// *store.AuthStore satisfies it.
type SessionChecker interface {
	IsAuthenticated(userID string) bool
}

// RequireAuth lets a request through only if it carries a valid token for
// a user whose session is still open. Otherwise it answers 401 with a
// redirect hint to the login page.
func RequireAuth(tokens *TokenService, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := identify(r, tokens, sessions)
			if err != nil {
				deny(w, http.StatusUnauthorized, "unauthorized", "valid authentication required", LoginRedirect)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin must run after RequireAuth. Signed-in users without the
// admin role get 403 and a hint to the admin login page.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			deny(w, http.StatusUnauthorized, "unauthorized", "valid authentication required", AdminLoginRedirect)
			return
		}
		if !id.IsAdmin() {
			deny(w, http.StatusForbidden, "forbidden", "administrator access required", AdminLoginRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalAuth attaches the identity when a valid session is present and
// otherwise lets the request continue anonymously. Public reads use it so
// that signed-in viewers see their own votes and registrations.
func OptionalAuth(tokens *TokenService, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := identify(r, tokens, sessions); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity set by RequireAuth or OptionalAuth.
// ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}

// UserIDFromContext is IdentityFromContext for callers that only need the id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.UserID, ok
}

// errNoSession is returned by identify when the token is fine but the user
// has logged out since it was issued.
type errNoSession struct{}

func (errNoSession) Error() string { return "auth: session closed" }

func identify(r *http.Request, tokens *TokenService, sessions SessionChecker) (Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Identity{}, err
	}
	id, err := tokens.Validate(cookie.Value)
	if err != nil {
		return Identity{}, err
	}
	if sessions != nil && !sessions.IsAuthenticated(id.UserID) {
		return Identity{}, errNoSession{}
	}
	return id, nil
}

func deny(w http.ResponseWriter, status int, code, message, redirect string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":    code,
		"message":  message,
		"redirect": redirect,
	})
}
