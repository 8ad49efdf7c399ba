// Package reconcile classifies enriched records and writes confirmed
// years back into the audio files.
//
// # Categories
//
// Every result row falls into exactly one category:
//
//	missing     tagged year unknown, found year resolved
//	differing   tagged year known, found year resolved and different
//	matching    tagged year equals found year
//	unresolved  the oracle gave no usable year (found year 0)
//	pending     not yet looked up
//
// Only missing and differing records are ever written back.
//
// # Write-back
//
// Write-back is split into a planning step and an apply step so the
// caller can show the plan and ask for confirmation in between:
//
//	engine := reconcile.NewEngine(store, audio.NewStore(nil), onProgress)
//
//	batch, err := engine.Prepare(reconcile.CategoryMissing)
//	if err != nil {
//	    return err
//	}
//	// show batch.Steps, confirm...
//	outcome, err := engine.Apply(ctx, batch)
//
// Files that cannot be tagged are skipped with a reason. After the batch,
// the result file is rewritten once with the tagged years of every record
// that was written, so it matches what is on disk.
package reconcile
