package model

// TrackRecord is one row of work: a track's identity, the metadata read
// from its tags, and the enrichment result.
//
// SourceID is the primary key and stays stable across every stage.
// Title and Artist hold UnknownText when the tag had no value, never an
// empty string.
type TrackRecord struct {
	// SourceID is the decoded file location taken from the manifest.
	SourceID string

	// Title is the raw title tag.
	Title string

	// Artist is the raw artist tag.
	Artist string

	// SearchKey is Title with promotional markers removed.
	SearchKey string

	// TaggedYear is the normalized year from the tag, or YearUnknown.
	TaggedYear Year

	// FoundYear is the oracle's answer. YearUnknown until attempted,
	// YearUnresolved when the oracle gave no usable year.
	FoundYear Year
}

// Attempted reports whether the oracle has been queried for this record.
func (r *TrackRecord) Attempted() bool {
	return r.FoundYear != YearUnknown
}

// Resolved reports whether the oracle produced a usable year.
func (r *TrackRecord) Resolved() bool {
	return r.FoundYear.Known()
}

// SetFoundYear records the result of one enrichment attempt, replacing
// any earlier attempt.
func (r *TrackRecord) SetFoundYear(y Year) {
	r.FoundYear = y
}

// Pending returns a copy of r with the enrichment result cleared.
func (r TrackRecord) Pending() TrackRecord {
	r.FoundYear = YearUnknown
	return r
}
