package geocode

import (
	"context"
	"errors"
	"net/http"

	"github.com/platemark/platemark-api/internal/geo"
)

// ErrEmptyQuery indicates a caller programming error: geocoding requires a
// non-empty query. A miss is never an error.
var ErrEmptyQuery = errors.New("geocode query must not be empty")

// Result is a successful geocoding resolution.
type Result struct {
	Point            geo.Point
	FormattedAddress string
	// City is the locality-level component of the resolved address, used by
	// the city-fallback search tier. May be empty when the provider returns
	// no locality.
	City string
}

// Options bias a lookup toward a known context.
type Options struct {
	// Hint, when set, is prepended to the query to bias accuracy (an
	// establishment name, typically).
	Hint string
	// BiasCenter pulls ambiguous results toward a point.
	BiasCenter *geo.Point
	// BiasRadiusKm bounds the bias area. Ignored without BiasCenter.
	BiasRadiusKm float64
}

// Geocoder resolves a free-text location to coordinates. A miss returns
// (nil, nil); providers reserve errors for transport-level failures so the
// chain can decide whether a fallback provider is worth trying.
type Geocoder interface {
	Geocode(ctx context.Context, query string, opts Options) (*Result, error)
}

// httpDoer abstracts the HTTP client for tests.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
