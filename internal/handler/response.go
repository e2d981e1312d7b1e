package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so the API has one
// success shape (the resource itself) and one error shape:
//
//	{"error": "not_found", "message": "issue not found with id abc", "field": "", "redirect": ""}
//
// "field" names the offending input on validation errors so the form can
// highlight it. "redirect" is only set by the auth guards.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/auth"
)

// maxBodyBytes caps request bodies. The largest legitimate body is an issue
// description plus a handful of media URLs.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// writeJSON sends data with the given status. Headers must be set before
// WriteHeader; anything set afterwards is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already on the wire, all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a service error to a status code and sends it.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation   → 400
//	apperror.ErrUnauthorized → 401 (redirect hint to /login)
//	apperror.ErrForbidden    → 403
//	apperror.ErrNotFound     → 404
//	apperror.ErrConflict     → 409
//	context.DeadlineExceeded → 504
//	anything else            → 500 with a generic message
//
// errors.Is walks the Unwrap chain, so services are free to wrap an
// AppError with fmt.Errorf("...: %w", err).
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp := ErrorResponse{Error: "internal_error", Message: appErr.Message, Field: appErr.Field}
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status, resp.Error = http.StatusBadRequest, "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status, resp.Error = http.StatusUnauthorized, "unauthorized"
			resp.Redirect = auth.LoginRedirect
		case errors.Is(err, apperror.ErrForbidden):
			status, resp.Error = http.StatusForbidden, "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status, resp.Error = http.StatusNotFound, "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status, resp.Error = http.StatusConflict, "conflict"
		}

		writeJSON(w, status, resp)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		writeJSON(w, http.StatusGatewayTimeout, ErrorResponse{
			Error:   "timeout",
			Message: "the request took too long, try again",
		})
		return
	}

	// Never echo internal errors: they can contain SQL or file paths.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a JSON request body into dst. Malformed or oversized
// bodies become a validation error on the "body" field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}

// viewer returns the signed-in user's id, or "" for anonymous requests.
func viewer(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// requireIdentity returns the caller's identity. Routes behind RequireAuth
// always have one; the check covers handlers mounted without it.
func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return auth.Identity{}, false
	}
	return id, true
}
