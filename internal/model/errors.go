package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when no artifact matches a store query.
var ErrNotFound = errors.New("artifact not found")

// ProviderError is a typed failure of a remote capability call. Adapters
// convert every transport-level or non-success provider response into one of
// these; raw provider exceptions never cross the adapter boundary.
type ProviderError struct {
	Provider   string // "serpapi", "gemini", "whisperx", "gspeech"
	StatusCode int    // HTTP status, 0 when not applicable
	Timeout    bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timed out: %v", e.Provider, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient (rate limit, server
// error, timeout).
func (e *ProviderError) Retryable() bool {
	return e.Timeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// ParseError means a response expected to contain structured JSON could not
// be parsed. Raw carries the unmodified provider text so callers can degrade
// instead of crashing the pipeline.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return "parse model output: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError means artifact persistence failed. The orchestrator must surface
// it rather than silently drop a produced artifact.
type WriteError struct {
	Ref string // file path or row key the write was aimed at
	Err error
}

func (e *WriteError) Error() string { return "write artifact " + e.Ref + ": " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

// ErrorInfo holds structured failure information for a Job.
type ErrorInfo struct {
	FailedStage string `json:"failed_stage"`
	Message     string `json:"message"`
	Retryable   bool   `json:"retryable"`
	FailedAt    string `json:"failed_at"`
}

// ToJSON serializes ErrorInfo to a JSON string.
func (e ErrorInfo) ToJSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}
