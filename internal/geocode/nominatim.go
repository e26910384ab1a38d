package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/platemark/platemark-api/internal/geo"
)

// NominatimGeocoder queries a Nominatim-compatible open geocoding service.
// It is the fallback provider: same miss contract as the primary, no API key.
type NominatimGeocoder struct {
	client  httpDoer
	baseURL string
}

// NewNominatimGeocoder builds a fallback geocoder against the given base URL.
func NewNominatimGeocoder(client *http.Client, baseURL string) *NominatimGeocoder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &NominatimGeocoder{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
	} `json:"address"`
}

// Geocode resolves the query against the open service. Nominatim has no
// location-bias parameter, so Options biasing is ignored here.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string, opts Options) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if hint := strings.TrimSpace(opts.Hint); hint != "" {
		query = hint + " " + query
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	reqURL := g.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", "platemark-api/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	top := results[0]
	lat, latErr := strconv.ParseFloat(top.Lat, 64)
	lng, lngErr := strconv.ParseFloat(top.Lon, 64)
	if latErr != nil || lngErr != nil {
		return nil, nil
	}

	return &Result{
		Point:            geo.Point{Lat: lat, Lng: lng},
		FormattedAddress: top.DisplayName,
		City:             firstNonEmpty(top.Address.City, top.Address.Town, top.Address.Village, top.Address.Municipality),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
