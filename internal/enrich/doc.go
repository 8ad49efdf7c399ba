// Package enrich runs the checkpointed enrichment pipeline: one oracle
// lookup per track, each result durably appended before the next lookup
// starts.
//
// # Runner
//
// A run moves through these states:
//
//	FRESH    -> RUNNING -> COMPLETE
//	RESUMING -> RUNNING -> COMPLETE
//
// FRESH extracts and normalizes the candidates once and writes them to
// the snapshot before any lookup is made. RESUMING repairs a torn last
// row, reads the snapshot and the results, and works out which records
// are still owed a lookup. An interrupted run leaves a result file that
// the next run picks up as RESUMING.
//
// # Basic Usage
//
//	runner := enrich.NewRunner(store, lookup, normalizer, enrich.Options{Workers: 1},
//	    func(event enrich.ProgressEvent) {
//	        fmt.Println(event.Message)
//	    })
//
//	summary, err := runner.Run(ctx, func(ctx context.Context) ([]string, error) {
//	    return extractor.ExtractFile(manifestPath)
//	})
//
// # Workers
//
// With one worker, records are processed in snapshot order and resume
// relies on the results being a prefix of the snapshot. With more
// workers, lookups overlap and complete out of order; resume then counts
// completed ids against the snapshot instead. When a pooled run
// completes, the result file is rewritten in snapshot order.
//
// # Outcomes
//
// An answer that is not exactly four digits, or an oracle that stays
// unavailable after its retries, is recorded as year 0 (unresolved).
// Cancellation and configuration errors stop the run without recording
// the record in flight.
package enrich
