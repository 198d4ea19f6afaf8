package worker

import (
	"sync"
	"time"

	"github.com/Kaliakbarb/persona/internal/model"
)

// Queue is an in-process FIFO of pending jobs. Jobs are transient: the
// durable record of a run is the artifact it produces, so the queue dies
// with the process and nothing needs resetting on restart.
type Queue struct {
	mu      sync.Mutex
	jobs    map[string]*model.Job
	pending []string
}

// NewQueue creates an empty job queue.
func NewQueue() *Queue {
	return &Queue{jobs: make(map[string]*model.Job)}
}

// Enqueue adds a PENDING job.
func (q *Queue) Enqueue(job model.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j := job
	q.jobs[j.ID] = &j
	q.pending = append(q.pending, j.ID)
}

// ClaimNext pops the oldest pending job and marks it PROCESSING.
// Returns nil when no job is available.
func (q *Queue) ClaimNext() *model.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) > 0 {
		id := q.pending[0]
		q.pending = q.pending[1:]
		j, ok := q.jobs[id]
		if !ok {
			continue
		}
		j.Status = model.JobProcessing
		j.UpdatedAt = now()
		claimed := *j
		return &claimed
	}
	return nil
}

// Get returns a snapshot of the job with the given id.
func (q *Queue) Get(id string) (model.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return model.Job{}, false
	}
	return *j, true
}

// Complete marks a job DONE and records the produced artifact.
func (q *Queue) Complete(id, artifactID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if j, ok := q.jobs[id]; ok {
		j.Status = model.JobDone
		j.ArtifactID = artifactID
		j.ErrorInfo = nil
		j.UpdatedAt = now()
	}
}

// Fail marks a job FAILED with structured error info.
func (q *Queue) Fail(id, errorInfo string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if j, ok := q.jobs[id]; ok {
		j.Status = model.JobFailed
		j.ErrorInfo = &errorInfo
		j.UpdatedAt = now()
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
