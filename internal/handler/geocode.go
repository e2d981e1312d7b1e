package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/geocode"
)

// GeocodeHandler turns a map click into an address for the report form.
//
// INTERFACE DEPENDENCY:
// The handler takes the geocode.Geocoder interface, so tests can swap in a
// stub that answers instantly and the simulated geocoder can later be
// replaced by a real provider without touching this file.
type GeocodeHandler struct {
	geocoder geocode.Geocoder
	logger   *slog.Logger
}

// NewGeocodeHandler creates a GeocodeHandler.
func NewGeocodeHandler(g geocode.Geocoder, logger *slog.Logger) *GeocodeHandler {
	return &GeocodeHandler{geocoder: g, logger: logger}
}

// HandleReverse resolves coordinates to an address.
//
// HTTP: GET /api/geocode/reverse?lat=23.2599&lng=77.4126
//
// The lookup is bound to the request context: if the client disconnects the
// lookup stops early.
func (h *GeocodeHandler) HandleReverse(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("lat", "lat must be a number"))
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("lng", "lng must be a number"))
		return
	}

	res, err := h.geocoder.Reverse(r.Context(), geocode.Request{Lat: lat, Lng: lng})
	if err != nil {
		h.logger.Warn("reverse geocode failed",
			slog.Float64("lat", lat),
			slog.Float64("lng", lng),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
