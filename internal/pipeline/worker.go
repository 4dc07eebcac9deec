package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/boletoscan/internal/match"
)

// Worker processes one batch job at a time.
type Worker struct {
	proc *Processor
	log  *slog.Logger
}

func NewWorker(proc *Processor, log *slog.Logger) *Worker {
	return &Worker{proc: proc, log: log}
}

// Process runs extraction and matching for a job, updating its status as it
// goes.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()
	rep := Report{Filename: job.Filename}

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	text, ok := w.proc.Extract(ctx, &rep, job.FileData())
	if !ok {
		job.AddError(match.ErrProcessingFail)
		job.SetReport(w.proc.finish(rep, start))
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	// Phase 2: Parse and match
	job.SetStatus(StatusMatching, "matching")
	w.proc.Resolve(ctx, &rep, text)
	rep = w.proc.finish(rep, start)
	job.SetReport(rep)

	if rep.Match.Outcome() == "failed" {
		job.AddError(match.ErrProcessingFail)
		job.SetStatus(StatusFailed, "matching")
		return
	}
	log.Info("job complete",
		"outcome", rep.Match.Outcome(),
		"confidence", rep.Match.Confidence,
		"duration_ms", rep.DurationMs,
	)
	job.SetStatus(StatusCompleted, "done")
}
