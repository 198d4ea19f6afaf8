// Package pipeline composes the provider adapters into the fixed flows the
// service exposes: profile-search, profile generation, and audio-insight.
// Each successful run ends with exactly one immutable artifact in the store.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Kaliakbarb/persona/internal/model"
	"github.com/Kaliakbarb/persona/internal/provider"
	"github.com/Kaliakbarb/persona/internal/store"
)

// Pipelines orchestrates adapter calls and artifact persistence.
type Pipelines struct {
	store       store.ArtifactStore
	search      provider.Searcher
	gen         provider.Generator
	transcriber provider.Transcriber
	extractor   provider.Extractor
	maxContext  int
}

// Option configures Pipelines.
type Option func(*Pipelines)

// WithExtractor enables page-content enrichment of the profile flow.
func WithExtractor(e provider.Extractor) Option {
	return func(p *Pipelines) { p.extractor = e }
}

// WithMaxContext caps the number of runes of context fed into a prompt.
func WithMaxContext(n int) Option {
	return func(p *Pipelines) { p.maxContext = n }
}

// New creates the pipeline orchestrator with the given dependencies.
func New(s store.ArtifactStore, searcher provider.Searcher, gen provider.Generator, transcriber provider.Transcriber, opts ...Option) *Pipelines {
	p := &Pipelines{
		store:       s,
		search:      searcher,
		gen:         gen,
		transcriber: transcriber,
		maxContext:  12000,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// saveArtifact marshals payload and persists it as a new artifact.
// A persistence failure surfaces as a StepError wrapping *model.WriteError.
func (p *Pipelines) saveArtifact(ctx context.Context, subjectKey, kind string, payload interface{}) (*model.Artifact, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, &StepError{Step: "persist", Err: fmt.Errorf("marshal payload: %w", err)}
	}
	artifact := model.NewArtifact(uuid.New().String(), subjectKey, kind, string(b))
	if err := p.store.Save(ctx, artifact); err != nil {
		return nil, &StepError{Step: "persist", Err: err}
	}
	return &artifact, nil
}

// displayName derives a human-readable name from a subject key when the
// caller did not supply one ("jane_doe" -> "jane doe").
func displayName(subjectKey, fullName string) string {
	if fullName != "" {
		return fullName
	}
	return strings.Join(strings.FieldsFunc(subjectKey, func(r rune) bool {
		return r == '_' || r == '-'
	}), " ")
}

// StepError wraps an error with the name of the pipeline step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepName returns the failing step, for callers building error reports.
func (e *StepError) StepName() string {
	return e.Step
}
