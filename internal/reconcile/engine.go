package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/handiism/trackyear/internal/audio"
	"github.com/handiism/trackyear/internal/enrich"
	"github.com/handiism/trackyear/internal/model"
)

// ResultStore is the part of the checkpoint store write-back needs.
type ResultStore interface {
	ReadResults() ([]model.TrackRecord, error)
	Rewrite(records []model.TrackRecord) error
}

// Writer tags audio files.
type Writer interface {
	Checker
	WriteYear(path string, year model.Year) error
}

// Batch is a planned write-back over the full result set.
type Batch struct {
	Category Category
	Records  []model.TrackRecord
	Steps    []Step
}

// Outcome summarizes an applied batch.
type Outcome struct {
	Written int
	Skipped int

	// Failed holds steps whose write returned an error.
	Failed []Step
}

// Engine applies batches.
type Engine struct {
	results    ResultStore
	writer     Writer
	onProgress func(enrich.ProgressEvent)
}

// NewEngine creates an engine. onProgress may be nil.
func NewEngine(results ResultStore, writer Writer, onProgress func(enrich.ProgressEvent)) *Engine {
	return &Engine{results: results, writer: writer, onProgress: onProgress}
}

func (e *Engine) progress(event enrich.ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}

// Prepare loads the result set and plans write-back for category c.
func (e *Engine) Prepare(c Category) (*Batch, error) {
	records, err := e.results.ReadResults()
	if err != nil {
		return nil, err
	}
	steps, err := Plan(records, c, e.writer)
	if err != nil {
		return nil, err
	}
	return &Batch{Category: c, Records: records, Steps: steps}, nil
}

// Apply performs the batch's writes, then rewrites the result file once.
//
// A canceled context stops before the next write; the records already
// written are still persisted.
func (e *Engine) Apply(ctx context.Context, b *Batch) (Outcome, error) {
	var out Outcome

	for i, step := range b.Steps {
		if ctx.Err() != nil {
			break
		}
		rec := step.Record

		if step.Action != ActionWrite {
			out.Skipped++
			e.progress(enrich.ProgressEvent{
				Message: fmt.Sprintf("Skipping %s: %v", rec.SourceID, step.Reason),
				Level:   enrich.LevelWarning,
			})
			continue
		}
		if !rec.FoundYear.Known() {
			continue
		}

		if err := e.writer.WriteYear(rec.SourceID, rec.FoundYear); err != nil {
			if errors.Is(err, audio.ErrUnsupportedFormat) || errors.Is(err, audio.ErrFileMissing) {
				out.Skipped++
				e.progress(enrich.ProgressEvent{
					Message: fmt.Sprintf("Skipping %s: %v", rec.SourceID, err),
					Level:   enrich.LevelWarning,
				})
				continue
			}
			step.Reason = err
			b.Steps[i] = step
			out.Failed = append(out.Failed, step)
			e.progress(enrich.ProgressEvent{
				Message: fmt.Sprintf("Error writing %s: %v", rec.SourceID, err),
				Level:   enrich.LevelError,
			})
			continue
		}

		b.Records[step.Index].TaggedYear = rec.FoundYear
		out.Written++
		e.progress(enrich.ProgressEvent{
			Message: fmt.Sprintf("Tagged %s - %s with %s", rec.Artist, rec.Title, rec.FoundYear),
			Level:   enrich.LevelVerbose,
		})
	}

	if out.Written > 0 {
		if err := e.results.Rewrite(b.Records); err != nil {
			return out, fmt.Errorf("rewrite results after write-back: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	e.progress(enrich.ProgressEvent{
		Message: fmt.Sprintf("Write-back complete: %d written, %d skipped, %d failed", out.Written, out.Skipped, len(out.Failed)),
		Level:   enrich.LevelSuccess,
	})
	return out, nil
}
