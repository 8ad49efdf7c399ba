package checkpoint

import (
	"fmt"

	"github.com/handiism/trackyear/internal/model"
)

// Cursor returns the snapshot position to resume from when results were
// completed strictly in snapshot order.
//
// The last result's SourceID is located in the snapshot and every earlier
// result must match the snapshot row for row. Anything else is
// ErrResume: resuming would misalign tagged and found years.
func Cursor(snapshot, results []model.TrackRecord) (int, error) {
	k := len(results)
	if k == 0 {
		return 0, nil
	}
	if k > len(snapshot) {
		return 0, fmt.Errorf("%w: %d results for %d snapshot records", ErrResume, k, len(snapshot))
	}

	last := results[k-1].SourceID
	if snapshot[k-1].SourceID != last {
		return 0, fmt.Errorf("%w: last completed %q is not snapshot record %d", ErrResume, last, k)
	}
	for i := 0; i < k-1; i++ {
		if results[i].SourceID != snapshot[i].SourceID {
			return 0, fmt.Errorf("%w: result row %d is %q, snapshot has %q (results were not written in order; resume with more than one worker)",
				ErrResume, i+1, results[i].SourceID, snapshot[i].SourceID)
		}
	}
	return k, nil
}

// Outstanding returns the snapshot positions that still need a lookup,
// in snapshot order, when results may have completed out of order.
//
// Completed ids are counted as a multiset and consumed against the
// snapshot in order, so duplicate snapshot entries are each owed one
// result. A result that the snapshot cannot account for is ErrResume.
func Outstanding(snapshot, results []model.TrackRecord) ([]int, error) {
	done := make(map[string]int, len(results))
	for _, r := range results {
		done[r.SourceID]++
	}

	owed := make(map[string]int, len(snapshot))
	for _, r := range snapshot {
		owed[r.SourceID]++
	}
	for id, n := range done {
		if n > owed[id] {
			return nil, fmt.Errorf("%w: %q completed %d times, snapshot lists it %d times", ErrResume, id, n, owed[id])
		}
	}

	var pending []int
	for i, r := range snapshot {
		if done[r.SourceID] > 0 {
			done[r.SourceID]--
			continue
		}
		pending = append(pending, i)
	}
	return pending, nil
}

// Merge orders results by snapshot position, for presenting a pooled
// run's results in traversal order. Results must already be aligned
// (see Outstanding).
func Merge(snapshot, results []model.TrackRecord) []model.TrackRecord {
	byID := make(map[string][]model.TrackRecord, len(results))
	for _, r := range results {
		byID[r.SourceID] = append(byID[r.SourceID], r)
	}
	merged := make([]model.TrackRecord, 0, len(results))
	for _, s := range snapshot {
		queue := byID[s.SourceID]
		if len(queue) == 0 {
			continue
		}
		merged = append(merged, queue[0])
		byID[s.SourceID] = queue[1:]
	}
	return merged
}
