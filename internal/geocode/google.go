package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/platemark/platemark-api/internal/geo"
)

// GoogleProxyGeocoder talks to the proxied Google geocoding endpoint. The
// proxy holds the API key; this service authenticates with an ID token, the
// same way the other Cloud Run services in this deployment call each other.
type GoogleProxyGeocoder struct {
	client  httpDoer
	baseURL string
}

// NewGoogleProxyGeocoder builds a proxy-backed geocoder. When client is nil an
// ID-token client is created for service-to-service calls, falling back to a
// plain client with a timeout if that is not possible.
func NewGoogleProxyGeocoder(client *http.Client, baseURL string) *GoogleProxyGeocoder {
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			client = idc
		}
	}
	return &GoogleProxyGeocoder{client: client, baseURL: baseURL}
}

type googleGeocodeResponse struct {
	Status  string `json:"status"` // OK, ZERO_RESULTS, ...
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Geocode resolves the query through the proxy. Zero results yield (nil, nil);
// transport and HTTP failures are returned as errors for the chain to handle.
func (g *GoogleProxyGeocoder) Geocode(ctx context.Context, query string, opts Options) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if hint := strings.TrimSpace(opts.Hint); hint != "" {
		query = hint + " " + query
	}

	params := url.Values{}
	params.Set("address", query)
	if opts.BiasCenter != nil {
		params.Set("bias", fmt.Sprintf("%f,%f", opts.BiasCenter.Lat, opts.BiasCenter.Lng))
		if opts.BiasRadiusKm > 0 {
			params.Set("bias_radius_km", fmt.Sprintf("%g", opts.BiasRadiusKm))
		}
	}

	reqURL := g.baseURL + "/geocode/json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	// Any non-OK status collapses into a miss; the orchestrator does not
	// distinguish malformed provider responses from true empties.
	if payload.Status != "OK" || len(payload.Results) == 0 {
		return nil, nil
	}

	top := payload.Results[0]
	result := &Result{
		Point:            geo.Point{Lat: top.Geometry.Location.Lat, Lng: top.Geometry.Location.Lng},
		FormattedAddress: top.FormattedAddress,
	}
	for _, component := range top.AddressComponents {
		if componentHasType(component.Types, "locality") {
			result.City = component.LongName
			break
		}
	}
	if result.City == "" {
		for _, component := range top.AddressComponents {
			if componentHasType(component.Types, "postal_town") {
				result.City = component.LongName
				break
			}
		}
	}

	return result, nil
}

func componentHasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
