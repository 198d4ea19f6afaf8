package model

import "time"

// Artifact kind constants
const (
	KindSearch  = "search"
	KindProfile = "profile"
	KindInsight = "insight"
)

// Pipeline name constants, as accepted by the API.
const (
	PipelineProfileSearch = "profile-search"
	PipelineProfile       = "profile"
	PipelineAudioInsight  = "audio-insight"
)

// Artifact is an immutable, timestamped record produced by one pipeline run
// for one subject. Artifacts are append-only: a re-run for the same subject
// and kind creates a new artifact rather than replacing the old one.
type Artifact struct {
	ID         string `json:"id"`
	SubjectKey string `json:"subject_key"`
	Kind       string `json:"kind"`
	Payload    string `json:"payload"` // JSON string
	CreatedAt  string `json:"created_at"`
}

// NewArtifact creates an Artifact stamped with the current UTC time.
func NewArtifact(id, subjectKey, kind, payload string) Artifact {
	return Artifact{
		ID:         id,
		SubjectKey: subjectKey,
		Kind:       kind,
		Payload:    payload,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}

// KnownKind reports whether kind is one of the fixed artifact kinds.
func KnownKind(kind string) bool {
	switch kind {
	case KindSearch, KindProfile, KindInsight:
		return true
	}
	return false
}
