package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// SerpClient implements Searcher using the SerpAPI Google engine.
type SerpClient struct {
	apiKey     string
	baseURL    string
	country    string // "gl" parameter
	language   string // "hl" parameter
	numResults int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// SerpOption configures the SerpAPI client.
type SerpOption func(*SerpClient)

// WithSerpLocale sets the country ("gl") and language ("hl") hints.
func WithSerpLocale(country, language string) SerpOption {
	return func(c *SerpClient) {
		c.country = country
		c.language = language
	}
}

// WithSerpBaseURL overrides the API endpoint (used in tests).
func WithSerpBaseURL(u string) SerpOption {
	return func(c *SerpClient) { c.baseURL = u }
}

// WithSerpTimeout sets the per-request timeout.
func WithSerpTimeout(d time.Duration) SerpOption {
	return func(c *SerpClient) { c.httpClient.Timeout = d }
}

// WithSerpRateLimit bounds the sustained request rate and burst size.
// SerpAPI plans are quota-billed, so the client throttles itself rather than
// burning quota into 429 responses.
func WithSerpRateLimit(rps float64, burst int) SerpOption {
	return func(c *SerpClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewSerpClient creates a new SerpAPI search client.
func NewSerpClient(apiKey string, opts ...SerpOption) *SerpClient {
	c := &SerpClient{
		apiKey:     apiKey,
		baseURL:    "https://serpapi.com/search.json",
		country:    "us",
		language:   "en",
		numResults: 10,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// serpResponse mirrors the subset of the SerpAPI payload we consume.
type serpResponse struct {
	OrganicResults []SearchResult         `json:"organic_results"`
	KnowledgeGraph map[string]interface{} `json:"knowledge_graph"`
	RelatedSearches []struct {
		Query string `json:"query"`
	} `json:"related_searches"`
	RelatedQuestions []struct {
		Question string `json:"question"`
	} `json:"related_questions"`
	Error string `json:"error,omitempty"`
}

// Search runs a Google search for the query and normalizes the response.
// It retries once with backoff on transient failures.
func (c *SerpClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, providerErr("serpapi", 0, err)
	}

	const maxAttempts = 2
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := c.doRequest(ctx, query)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var ae *apiError
		if errors.As(err, &ae) && !ae.isRetryable() {
			return nil, providerErr("serpapi", ae.StatusCode, err)
		}

		if attempt < maxAttempts-1 {
			backoff := time.Duration(attempt+1) * 2 * time.Second
			select {
			case <-ctx.Done():
				return nil, providerErr("serpapi", 0, ctx.Err())
			case <-time.After(backoff):
			}
		}
	}
	status := 0
	var ae *apiError
	if errors.As(lastErr, &ae) {
		status = ae.StatusCode
	}
	return nil, providerErr("serpapi", status, lastErr)
}

func (c *SerpClient) doRequest(ctx context.Context, query string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("num", fmt.Sprintf("%d", c.numResults))
	params.Set("gl", c.country)
	params.Set("hl", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &apiError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var sr serpResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("api error: %s", sr.Error)
	}

	out := &SearchResponse{
		Query:            query,
		OrganicResults:   sr.OrganicResults,
		KnowledgeGraph:   sr.KnowledgeGraph,
		RelatedSearches:  make([]string, 0, len(sr.RelatedSearches)),
		RelatedQuestions: make([]string, 0, len(sr.RelatedQuestions)),
	}
	if out.OrganicResults == nil {
		out.OrganicResults = []SearchResult{}
	}
	if out.KnowledgeGraph == nil {
		out.KnowledgeGraph = map[string]interface{}{}
	}
	for _, s := range sr.RelatedSearches {
		out.RelatedSearches = append(out.RelatedSearches, s.Query)
	}
	for _, q := range sr.RelatedQuestions {
		out.RelatedQuestions = append(out.RelatedQuestions, q.Question)
	}
	return out, nil
}
