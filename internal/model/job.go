package model

import "time"

// Job status constants
const (
	JobPending    = "PENDING"
	JobProcessing = "PROCESSING"
	JobDone       = "DONE"
	JobFailed     = "FAILED"
)

// Job tracks one queued pipeline run. Jobs are transient process state; the
// durable record of a run is the artifact it produces.
type Job struct {
	ID         string  `json:"id"`
	SubjectKey string  `json:"subject_key"`
	Pipeline   string  `json:"pipeline"`
	AudioPath  string  `json:"-"`
	Status     string  `json:"status"`
	ArtifactID string  `json:"artifact_id,omitempty"`
	ErrorInfo  *string `json:"error_info,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// NewJob creates a PENDING job for the given subject and pipeline.
func NewJob(id, subjectKey, pipeline, audioPath string) Job {
	now := time.Now().UTC().Format(time.RFC3339)
	return Job{
		ID:         id,
		SubjectKey: subjectKey,
		Pipeline:   pipeline,
		AudioPath:  audioPath,
		Status:     JobPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
