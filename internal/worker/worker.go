package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Kaliakbarb/persona/internal/model"
)

// Processor runs the audio-insight pipeline for a single job.
type Processor interface {
	AudioInsight(ctx context.Context, subjectKey, audioPath string) (*model.Artifact, error)
}

// Worker polls the queue for pending jobs and runs the pipeline.
type Worker struct {
	queue     *Queue
	processor Processor
	interval  time.Duration
}

// New creates a new Worker.
func New(queue *Queue, processor Processor, interval time.Duration) *Worker {
	return &Worker{queue: queue, processor: processor, interval: interval}
}

// Start begins the polling loop. It blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("worker started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped")
			return
		default:
		}

		job := w.queue.ClaimNext()
		if job == nil {
			w.sleep(ctx)
			continue
		}

		slog.Info("processing job", "job_id", job.ID, "subject", job.SubjectKey)
		artifact, err := w.processor.AudioInsight(ctx, job.SubjectKey, job.AudioPath)
		if err != nil {
			slog.Error("job failed", "job_id", job.ID, "error", err)
			w.queue.Fail(job.ID, buildErrorInfo(err))
			continue
		}

		w.queue.Complete(job.ID, artifact.ID)
		slog.Info("job done", "job_id", job.ID, "artifact_id", artifact.ID)
	}
}

func (w *Worker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.interval):
	}
}

// stageNamer is implemented by errors that carry a pipeline step name.
type stageNamer interface {
	StepName() string
}

func buildErrorInfo(err error) string {
	stage := "unknown"
	var sn stageNamer
	if errors.As(err, &sn) {
		stage = sn.StepName()
	}
	retryable := true
	var pe *model.ProviderError
	if errors.As(err, &pe) {
		retryable = pe.Retryable()
	}
	info := model.ErrorInfo{
		FailedStage: stage,
		Message:     err.Error(),
		Retryable:   retryable,
		FailedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	return info.ToJSON()
}
