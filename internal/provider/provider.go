// Package provider contains the adapters around the external capabilities the
// pipelines compose: web search, text generation, speech transcription, and
// page extraction. Each adapter normalizes its provider's response shape and
// converts every remote failure into a typed *model.ProviderError.
package provider

import (
	"context"
	"errors"
	"net"

	"github.com/Kaliakbarb/persona/internal/model"
)

// Searcher abstracts the web-search provider.
type Searcher interface {
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// Generator abstracts the generative-language provider.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Transcriber abstracts the speech-to-text provider. Implementations read the
// audio file at path and do not take ownership of it.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*Transcription, error)
}

// Extractor abstracts readable-content extraction from a web page.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// SearchResult is one organic web result.
type SearchResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

// SearchResponse is the normalized output of a search call.
type SearchResponse struct {
	Query            string                 `json:"query"`
	OrganicResults   []SearchResult         `json:"organic_results"`
	KnowledgeGraph   map[string]interface{} `json:"knowledge_graph"`
	RelatedSearches  []string               `json:"related_searches"`
	RelatedQuestions []string               `json:"related_questions"`
}

// Transcription is the normalized output of a transcription call.
type Transcription struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration_seconds"`
}

// providerErr wraps err as a *model.ProviderError, detecting timeouts so the
// orchestrator can tell a slow provider from a broken one.
func providerErr(provider string, statusCode int, err error) *model.ProviderError {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var ne net.Error
	if !timeout && errors.As(err, &ne) {
		timeout = ne.Timeout()
	}
	return &model.ProviderError{Provider: provider, StatusCode: statusCode, Timeout: timeout, Err: err}
}
