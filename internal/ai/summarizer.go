package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Summary is the structured payload the text-generation service produces
// from raw review text.
type Summary struct {
	Summary       string   `json:"summary"`
	PopularDishes []string `json:"popular_dishes"`
	Sentiment     string   `json:"sentiment"`
	Confidence    float64  `json:"confidence"`
}

// Summarizer condenses review texts into a sentiment summary and notable
// dishes.
type Summarizer interface {
	Summarize(ctx context.Context, reviewTexts []string) (*Summary, error)
}

// httpDoer abstracts the HTTP client for tests.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSummarizer posts review texts to a text-generation endpoint and parses
// the JSON payload out of whatever prose the model wraps it in.
type HTTPSummarizer struct {
	client  httpDoer
	baseURL string
}

// NewHTTPSummarizer builds a summarizer client against the given base URL.
func NewHTTPSummarizer(client *http.Client, baseURL string) *HTTPSummarizer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSummarizer{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Summarize sends the review texts for summarization.
func (s *HTTPSummarizer) Summarize(ctx context.Context, reviewTexts []string) (*Summary, error) {
	if len(reviewTexts) == 0 {
		return nil, fmt.Errorf("no review texts to summarize")
	}

	body, err := json.Marshal(map[string]any{"review_texts": reviewTexts})
	if err != nil {
		return nil, fmt.Errorf("marshal summarize payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/summarize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build summarize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("summarize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("summarizer returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read summarize response: %w", err)
	}

	return parseSummaryResponse(raw)
}

// parseSummaryResponse accepts either the service envelope {"data":{"output": "..."}}
// or a bare model response, and in both cases tolerates prose around the JSON
// object.
func parseSummaryResponse(raw []byte) (*Summary, error) {
	text := string(raw)

	var envelope struct {
		Data struct {
			Output string `json:"output"`
		} `json:"data"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != "" {
			return nil, fmt.Errorf("summarizer error: %s", envelope.Error)
		}
		if envelope.Data.Output != "" {
			text = envelope.Data.Output
		}
	}

	obj, ok := ExtractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in summarizer response")
	}

	var summary Summary
	if err := json.Unmarshal([]byte(obj), &summary); err != nil {
		return nil, fmt.Errorf("parse summary object: %w", err)
	}
	if strings.TrimSpace(summary.Summary) == "" {
		return nil, fmt.Errorf("summarizer response is missing a summary")
	}
	return &summary, nil
}
