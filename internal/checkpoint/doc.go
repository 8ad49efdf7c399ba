// Package checkpoint persists enrichment progress so that a run can be
// interrupted at any point and resumed without repeating a lookup.
//
// Two files are involved:
//
//   - the snapshot, written once per fresh run, listing every record to
//     process in traversal order (five columns)
//   - the result file, an append-only log with one fully quoted row per
//     completed record (six columns, the sixth being the found year)
//
//	"Location","Title","Artist","Search Key","Tagged Year","Found Year"
//	"/music-library/top40/a.mp3","A (Clean)","X","A","unknown","1999"
//
// Each append is flushed to stable storage before the next lookup starts.
// On resume, a trailing partial row is cut off and the rows are aligned
// with the snapshot, either as a strict prefix (Cursor) or as a completion
// multiset when rows were completed out of order (Outstanding).
//
// A Store holds an exclusive lock on "<result>.lock" while open, so only
// one process works on a result file at a time.
package checkpoint
