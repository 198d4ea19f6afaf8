package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
)

const (
	// maxPageText caps the readable text kept from a fetched page.
	maxPageText = 8000
	// maxPageBody is the maximum HTTP response body size (5MB).
	maxPageBody = 5 * 1024 * 1024
)

// PageExtractor fetches a web page and extracts its readable text using
// go-readability. It is used to enrich profile generation with the content of
// a subject's top search result; extraction is best-effort.
type PageExtractor struct {
	client *http.Client
}

// NewPageExtractor creates a new HTTP-based page extractor.
func NewPageExtractor(timeout time.Duration) *PageExtractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PageExtractor{
		client: &http.Client{Timeout: timeout},
	}
}

// Extract fetches the URL and returns normalized readable text.
func (e *PageExtractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	// A realistic browser User-Agent avoids being blocked by sites.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", providerErr("extract", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", providerErr("extract", resp.StatusCode, fmt.Errorf("fetch %s", url))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return "", providerErr("extract", 0, fmt.Errorf("read body: %w", err))
	}

	parsedURL, _ := nurl.Parse(url)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	text := normalizeText(article.TextContent)
	if utf8.RuneCountInString(text) > maxPageText {
		runes := []rune(text)
		text = string(runes[:maxPageText]) + "\n... [truncated]"
	}
	return text, nil
}

var multiSpace = regexp.MustCompile(`[ \t]+`)
var multiNewline = regexp.MustCompile(`\n{3,}`)

func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	s = multiSpace.ReplaceAllString(s, " ")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return s
}
