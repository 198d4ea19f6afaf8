// Package store persists pipeline artifacts. Artifacts are append-only and
// uniquely keyed per run, so concurrent pipeline invocations never conflict.
// Two backends implement the same contract: JSON files on disk and SQLite.
package store

import (
	"context"
	"regexp"
	"strings"

	"github.com/Kaliakbarb/persona/internal/model"
)

// ArtifactStore provides access to artifact persistence.
//
// Save returns a *model.WriteError when persistence fails. GetLatestByKind
// returns model.ErrNotFound when no artifact matches.
type ArtifactStore interface {
	Save(ctx context.Context, a model.Artifact) error
	List(ctx context.Context, subjectKey string) ([]model.Artifact, error)
	GetLatestByKind(ctx context.Context, subjectKey, kind string) (*model.Artifact, error)
}

var keyUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// SanitizeKey normalizes a subject key so both backends store and match the
// same value regardless of caller input ("Jane Doe" -> "jane_doe").
func SanitizeKey(key string) string {
	key = strings.TrimSpace(strings.ToLower(key))
	key = keyUnsafe.ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}
