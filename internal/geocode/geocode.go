// Package geocode turns map coordinates into a human-readable address for
// the issue reporting form.
package geocode

import (
	"context"
	"time"

	"github.com/sakif/civic-sync/internal/apperror"
)

// Request is a point to look up.
type Request struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate rejects coordinates outside the valid range.
func (r Request) Validate() error {
	if r.Lat < -90 || r.Lat > 90 {
		return apperror.ValidationFailed("lat", "latitude must be between -90 and 90")
	}
	if r.Lng < -180 || r.Lng > 180 {
		return apperror.ValidationFailed("lng", "longitude must be between -180 and 180")
	}
	return nil
}

// Result is the resolved address.
type Result struct {
	Lat      float64       `json:"lat"`
	Lng      float64       `json:"lng"`
	Address  string        `json:"address"`
	Duration time.Duration `json:"duration"`
}

// Geocoder resolves coordinates to an address. Implementations must honour
// ctx cancellation.
type Geocoder interface {
	Reverse(ctx context.Context, req Request) (*Result, error)
}
