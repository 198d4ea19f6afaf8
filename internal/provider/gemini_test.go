package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kaliakbarb/persona/internal/model"
)

func TestNewGeminiClient_Defaults(t *testing.T) {
	c := NewGeminiClient("test-key")
	if c.apiKey != "test-key" {
		t.Errorf("apiKey = %q, want %q", c.apiKey, "test-key")
	}
	if c.model != "gemini-2.0-flash" {
		t.Errorf("model = %q, want gemini-2.0-flash", c.model)
	}
	if !strings.Contains(c.baseURL, "generativelanguage.googleapis.com") {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}

func TestGeminiClient_Options(t *testing.T) {
	c := NewGeminiClient("test-key",
		WithGeminiModel("gemini-2.5-pro"),
		WithGeminiBaseURL("http://localhost:9999"),
		WithGeminiTimeout(10*time.Second),
	)
	if c.model != "gemini-2.5-pro" {
		t.Errorf("model = %q", c.model)
	}
	if c.baseURL != "http://localhost:9999" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.httpClient.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", c.httpClient.Timeout)
	}
}

func TestGeminiClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("x-goog-api-key = %q", got)
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			t.Errorf("contents = %+v", req.Contents)
		} else if req.Contents[0].Parts[0].Text != "say hello" {
			t.Errorf("prompt = %q", req.Contents[0].Parts[0].Text)
		}

		w.Write([]byte(`{
			"candidates": [
				{"content": {"parts": [{"text": "Hello!"}]}}
			]
		}`))
	}))
	defer server.Close()

	c := NewGeminiClient("test-key", WithGeminiBaseURL(server.URL))
	got, err := c.Generate(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Hello!" {
		t.Errorf("Generate = %q, want %q", got, "Hello!")
	}
}

func TestGeminiClient_RetryOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded"}}`))
			return
		}
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "recovered"}]}}]}`))
	}))
	defer server.Close()

	c := NewGeminiClient("test-key", WithGeminiBaseURL(server.URL))
	got, err := c.Generate(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if got != "recovered" {
		t.Errorf("Generate = %q, want %q", got, "recovered")
	}
}

func TestGeminiClient_NonRetryableErrorFailsFast(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "invalid request"}}`))
	}))
	defer server.Close()

	c := NewGeminiClient("test-key", WithGeminiBaseURL(server.URL))
	_, err := c.Generate(context.Background(), "say hello")
	if err == nil {
		t.Fatal("Generate: expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (client errors must not be retried)", calls)
	}

	var pe *model.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %T, want *model.ProviderError", err)
	}
	if pe.Provider != "gemini" || pe.StatusCode != http.StatusBadRequest {
		t.Errorf("ProviderError = %+v", pe)
	}
}
