package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/trackyear/internal/checkpoint"
	"github.com/handiism/trackyear/internal/model"
	"github.com/handiism/trackyear/internal/oracle"
)

// Normalizer turns candidate ids into pending records.
type Normalizer interface {
	NormalizeAll(ctx context.Context, ids []string, progress func(done, total int)) ([]model.TrackRecord, error)
}

// Candidates supplies the ids for a fresh run. It is not called when
// resuming.
type Candidates func(ctx context.Context) ([]string, error)

// Options configures a Runner.
type Options struct {
	// Workers is the number of concurrent lookups. Values below 1 mean 1.
	Workers int
}

// Summary describes a finished run.
type Summary struct {
	// Start is StateFresh or StateResuming.
	Start State

	// Total is the number of records in the snapshot.
	Total int

	// Skipped counts records already completed by an earlier run.
	Skipped int

	// Processed counts records looked up by this run.
	Processed int

	// Resolved and Unresolved split Processed by outcome.
	Resolved   int
	Unresolved int

	// Repaired is the number of bytes dropped from a torn last row.
	Repaired int64
}

// Runner drives one enrichment run over a checkpoint store.
type Runner struct {
	store      *checkpoint.Store
	lookup     oracle.Lookup
	normalizer Normalizer
	workers    int
	onProgress func(ProgressEvent)

	mu    sync.RWMutex
	state State

	total      int32
	completed  int32
	resolved   int32
	unresolved int32
}

// NewRunner creates a runner. onProgress may be nil.
func NewRunner(store *checkpoint.Store, lookup oracle.Lookup, normalizer Normalizer, opts Options, onProgress func(ProgressEvent)) *Runner {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		store:      store,
		lookup:     lookup,
		normalizer: normalizer,
		workers:    workers,
		onProgress: onProgress,
	}
}

func (r *Runner) progress(event ProgressEvent) {
	if r.onProgress != nil {
		r.onProgress(event)
	}
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
	r.progress(ProgressEvent{Message: "State: " + s.String(), Level: LevelVerbose})
}

// State returns the current phase.
func (r *Runner) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// GetProgress returns completed and total counts for the current run.
func (r *Runner) GetProgress() (completed, total int) {
	return int(atomic.LoadInt32(&r.completed)), int(atomic.LoadInt32(&r.total))
}

// Run executes the pipeline until every snapshot record has a result, the
// context is canceled, or a fatal error occurs. Each completed record is
// durable before Run moves on, so a failed run can be resumed by calling
// Run again.
func (r *Runner) Run(ctx context.Context, candidates Candidates) (Summary, error) {
	var summary Summary

	status, err := r.store.Inspect()
	if err != nil {
		return summary, err
	}

	var snapshot, results []model.TrackRecord
	if status.Fresh() {
		summary.Start = StateFresh
		r.setState(StateFresh)

		snapshot, err = r.prepare(ctx, candidates)
		if err != nil {
			return summary, err
		}
	} else {
		summary.Start = StateResuming
		r.setState(StateResuming)

		summary.Repaired, snapshot, results, err = r.reload()
		if err != nil {
			return summary, err
		}
	}

	pending, err := r.outstanding(snapshot, results)
	if err != nil {
		return summary, err
	}

	summary.Total = len(snapshot)
	summary.Skipped = len(snapshot) - len(pending)
	atomic.StoreInt32(&r.total, int32(len(snapshot)))
	atomic.StoreInt32(&r.completed, int32(summary.Skipped))
	atomic.StoreInt32(&r.resolved, 0)
	atomic.StoreInt32(&r.unresolved, 0)

	if summary.Skipped > 0 {
		r.progress(ProgressEvent{
			Message: fmt.Sprintf("Resuming after %d of %d records", summary.Skipped, summary.Total),
			Level:   LevelInfo,
		})
	}

	r.setState(StateRunning)
	if r.workers == 1 {
		err = r.runSequential(ctx, snapshot, pending)
	} else {
		err = r.runPooled(ctx, snapshot, pending)
	}

	summary.Resolved = int(atomic.LoadInt32(&r.resolved))
	summary.Unresolved = int(atomic.LoadInt32(&r.unresolved))
	summary.Processed = summary.Resolved + summary.Unresolved
	if err != nil {
		return summary, err
	}

	if r.workers > 1 {
		if err := r.reorder(snapshot); err != nil {
			return summary, err
		}
	}

	r.setState(StateComplete)
	r.progress(ProgressEvent{
		Message: fmt.Sprintf("Enrichment complete: %d resolved, %d unresolved", summary.Resolved, summary.Unresolved),
		Level:   LevelSuccess,
	})
	return summary, nil
}

// prepare extracts and normalizes candidates, then writes the snapshot.
func (r *Runner) prepare(ctx context.Context, candidates Candidates) ([]model.TrackRecord, error) {
	if candidates == nil {
		return nil, errors.New("enrich: no candidate source for a fresh run")
	}
	ids, err := candidates(ctx)
	if err != nil {
		return nil, err
	}
	r.progress(ProgressEvent{Message: fmt.Sprintf("Found %d candidate tracks", len(ids)), Level: LevelInfo})

	records, err := r.normalizer.NormalizeAll(ctx, ids, func(done, total int) {
		r.progress(ProgressEvent{
			Message: fmt.Sprintf("Read tags %d/%d", done, total),
			Level:   LevelVerbose,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := r.store.WriteSnapshot(records); err != nil {
		return nil, err
	}
	r.progress(ProgressEvent{Message: fmt.Sprintf("Snapshot written: %s", r.store.SnapshotPath()), Level: LevelVerbose})
	return records, nil
}

// reload repairs and reads the existing checkpoint files.
func (r *Runner) reload() (int64, []model.TrackRecord, []model.TrackRecord, error) {
	dropped, err := r.store.Repair()
	if err != nil {
		return 0, nil, nil, err
	}
	if dropped > 0 {
		r.progress(ProgressEvent{
			Message: fmt.Sprintf("Dropped %d bytes of an incomplete row from %s", dropped, r.store.ResultPath()),
			Level:   LevelWarning,
		})
	}

	snapshot, err := r.store.ReadSnapshot()
	if err != nil {
		return dropped, nil, nil, err
	}
	results, err := r.store.ReadResults()
	if err != nil {
		return dropped, nil, nil, err
	}
	return dropped, snapshot, results, nil
}

// outstanding returns snapshot positions still owed a lookup.
func (r *Runner) outstanding(snapshot, results []model.TrackRecord) ([]int, error) {
	if r.workers > 1 {
		return checkpoint.Outstanding(snapshot, results)
	}
	cursor, err := checkpoint.Cursor(snapshot, results)
	if err != nil {
		return nil, err
	}
	pending := make([]int, 0, len(snapshot)-cursor)
	for i := cursor; i < len(snapshot); i++ {
		pending = append(pending, i)
	}
	return pending, nil
}

func (r *Runner) runSequential(ctx context.Context, snapshot []model.TrackRecord, pending []int) error {
	for _, idx := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.process(ctx, snapshot[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runPooled(ctx context.Context, snapshot []model.TrackRecord, pending []int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, idx := range pending {
		rec := snapshot[idx]
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return r.process(gctx, rec)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// process looks up one record and appends its result.
func (r *Runner) process(ctx context.Context, rec model.TrackRecord) error {
	outcome, err := Attempt(ctx, r.lookup, rec)
	if err != nil {
		if ctx.Err() == nil {
			r.progress(ProgressEvent{
				Message: fmt.Sprintf("Error looking up %s: %v", rec.SourceID, err),
				Level:   LevelError,
			})
		}
		return err
	}

	rec.SetFoundYear(outcome.Year)
	if err := r.store.Append(rec); err != nil {
		return err
	}

	done := atomic.AddInt32(&r.completed, 1)
	total := atomic.LoadInt32(&r.total)
	if outcome.Year.Known() {
		atomic.AddInt32(&r.resolved, 1)
		r.progress(ProgressEvent{
			Message: fmt.Sprintf("[%d/%d] %s - %s: %s", done, total, rec.Artist, rec.Title, outcome.Year),
			Level:   LevelVerbose,
		})
	} else {
		atomic.AddInt32(&r.unresolved, 1)
		r.progress(ProgressEvent{
			Message: fmt.Sprintf("[%d/%d] %s - %s: unresolved (%v)", done, total, rec.Artist, rec.Title, outcome.Reason),
			Level:   LevelWarning,
		})
	}
	return nil
}

// reorder rewrites the result file in snapshot order.
func (r *Runner) reorder(snapshot []model.TrackRecord) error {
	results, err := r.store.ReadResults()
	if err != nil {
		return err
	}
	if _, err := checkpoint.Outstanding(snapshot, results); err != nil {
		return err
	}
	return r.store.Rewrite(checkpoint.Merge(snapshot, results))
}
