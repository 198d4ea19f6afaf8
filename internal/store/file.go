package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Kaliakbarb/persona/internal/model"
)

// FileStore persists one JSON document per artifact under a data directory,
// named {subjectKey}_{kind}_{YYYYMMDD_HHMMSS}_{shortid}.json. Writes go
// through a temp file and rename, so readers only ever see complete
// artifacts.
type FileStore struct {
	dir string
}

var _ ArtifactStore = (*FileStore)(nil)

// NewFileStore creates the data directory if needed and returns the store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

const fileTimeLayout = "20060102_150405"

// Save writes the artifact as a new JSON file. The subject key is normalized
// on the stored document so both backends round-trip the same value.
func (s *FileStore) Save(_ context.Context, a model.Artifact) error {
	a.SubjectKey = SanitizeKey(a.SubjectKey)
	name := artifactFileName(a)
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return &model.WriteError{Ref: path, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-artifact-*")
	if err != nil {
		return &model.WriteError{Ref: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &model.WriteError{Ref: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &model.WriteError{Ref: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &model.WriteError{Ref: path, Err: err}
	}
	return nil
}

// List returns all artifacts for the subject, most recent first.
func (s *FileStore) List(_ context.Context, subjectKey string) ([]model.Artifact, error) {
	key := SanitizeKey(subjectKey)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	type candidate struct {
		stamp string
		path  string
	}
	var matches []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		k, _, stamp, ok := parseArtifactFileName(e.Name())
		if !ok || k != key {
			continue
		}
		matches = append(matches, candidate{stamp: stamp, path: filepath.Join(s.dir, e.Name())})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].stamp > matches[j].stamp })

	artifacts := make([]model.Artifact, 0, len(matches))
	for _, m := range matches {
		a, err := readArtifact(m.path)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// GetLatestByKind returns the most recent artifact of the given kind, or
// model.ErrNotFound when none exists.
func (s *FileStore) GetLatestByKind(_ context.Context, subjectKey, kind string) (*model.Artifact, error) {
	key := SanitizeKey(subjectKey)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var best, bestStamp string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		k, kd, stamp, ok := parseArtifactFileName(e.Name())
		if !ok || k != key || kd != kind {
			continue
		}
		if stamp > bestStamp {
			bestStamp = stamp
			best = e.Name()
		}
	}
	if best == "" {
		return nil, model.ErrNotFound
	}

	a, err := readArtifact(filepath.Join(s.dir, best))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func readArtifact(path string) (model.Artifact, error) {
	var a model.Artifact
	data, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return a, nil
}

// artifactFileName builds the storage key for an artifact. The short id
// suffix keeps two artifacts written within the same second from colliding.
func artifactFileName(a model.Artifact) string {
	stamp := time.Now().UTC().Format(fileTimeLayout)
	if t, err := time.Parse(time.RFC3339, a.CreatedAt); err == nil {
		stamp = t.UTC().Format(fileTimeLayout)
	}
	short := strings.ReplaceAll(a.ID, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_%s_%s_%s.json", SanitizeKey(a.SubjectKey), a.Kind, stamp, short)
}

// parseArtifactFileName splits {key}_{kind}_{date}_{time}_{shortid}.json from
// the right, since the subject key may itself contain underscores. stamp is
// "{date}_{time}_{shortid}", which sorts newest-last lexicographically.
func parseArtifactFileName(name string) (key, kind, stamp string, ok bool) {
	if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
		return "", "", "", false
	}
	base := strings.TrimSuffix(name, ".json")
	parts := strings.Split(base, "_")
	if len(parts) < 5 {
		return "", "", "", false
	}
	n := len(parts)
	key = strings.Join(parts[:n-4], "_")
	kind = parts[n-4]
	stamp = strings.Join(parts[n-3:], "_")
	if key == "" || !model.KnownKind(kind) {
		return "", "", "", false
	}
	return key, kind, stamp, true
}
