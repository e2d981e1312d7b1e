package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/civic-sync/internal/auth"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/service"
)

// AuthHandler signs users in and out and reports who is signed in.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLogin       → citizen portal login
//   - HandleAdminLogin  → admin portal login
//   - HandleRegister    → create an account and sign it in
//   - HandleLogout      → close the session and clear the cookie
//   - HandleMe          → the current user's profile
//
// The session token travels in an HttpOnly cookie; the response body only
// carries the user profile.
type AuthHandler struct {
	auth   *service.AuthService
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, tokens: tokens, logger: logger}
}

// LoginRequest is the body of both login endpoints. Role only matters on
// the citizen portal, AdminCode only on the admin portal.
type LoginRequest struct {
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      model.Role `json:"role"`
	AdminCode string     `json:"adminCode"`
}

// HandleLogin signs a user in through the citizen portal. Asking for the
// admin role here yields a citizen session.
//
// HTTP: POST /auth/login
// REQUEST BODY: {"email": "...", "password": "...", "role": "citizen"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Role == "" {
		req.Role = model.RoleCitizen
	}
	res, err := h.auth.Login(r.Context(), req.Email, req.Password, req.Role)
	h.finishLogin(w, res, err)
}

// HandleAdminLogin signs a user in through the admin portal.
//
// HTTP: POST /auth/admin/login
// REQUEST BODY: {"email": "...", "password": "...", "adminCode": "..."}
//
// A wrong admin code answers 403 without a cookie.
func (h *AuthHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.auth.AdminLogin(r.Context(), req.Email, req.Password, req.AdminCode)
	h.finishLogin(w, res, err)
}

func (h *AuthHandler) finishLogin(w http.ResponseWriter, res *service.AuthResult, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, res.User)
}

// HandleRegister creates an account and signs it in.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"name": "...", "email": "...", "password": "...", "phone": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, res.User)
}

// HandleLogout closes the caller's session and deletes the cookie.
//
// HTTP: POST /auth/logout
//
// Closing the session server-side means a copied token stops working now,
// not when it expires. Logging out without a session is not an error.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.UserIDFromContext(r.Context()); ok {
		h.auth.Logout(id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the signed-in user's profile.
//
// HTTP: GET /api/me
// Auth: Required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.auth.Current(id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// setSessionCookie stores the token in an HttpOnly cookie that lives as
// long as the token does. Secure should be set when serving over HTTPS.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
