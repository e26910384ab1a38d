package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// httpDoer abstracts the HTTP client for tests.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the Google Places text-search and details endpoints.
type Client struct {
	client  httpDoer
	baseURL string
	apiKey  string
}

// NewClient builds a Places client against the given API base URL.
func NewClient(client *http.Client, baseURL, apiKey string) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// FindPlaceID runs a text search and returns the top candidate's place id.
// No candidate returns an empty id with a nil error; that is an expected
// outcome, not a failure.
func (c *Client) FindPlaceID(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("places query must not be empty")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	var payload textSearchResponse
	if err := c.getJSON(ctx, "/textsearch/json?"+params.Encode(), &payload); err != nil {
		return "", err
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		return "", nil
	}
	return payload.Results[0].PlaceID, nil
}

// Details fetches rating, rating count, phone and the provider's review feed
// for a place.
func (c *Client) Details(ctx context.Context, placeID string) (*Details, error) {
	if placeID == "" {
		return nil, fmt.Errorf("place id must not be empty")
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,rating,user_ratings_total,formatted_phone_number,reviews")
	params.Set("reviews_sort", "newest")
	params.Set("key", c.apiKey)

	var payload detailsResponse
	if err := c.getJSON(ctx, "/details/json?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	if payload.Status != "OK" {
		return nil, fmt.Errorf("places details status: %s", payload.Status)
	}
	return &payload.Result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build places request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode places response: %w", err)
	}
	return nil
}
