// Package model defines the core data structures used throughout
// the trackyear pipeline.
//
// # TrackRecord
//
// TrackRecord is the unit of work for every stage. It is created by the
// normalizer from a file location, enriched with a found year by the
// runner, and may have its tagged year updated by a write-back:
//
//	rec := model.TrackRecord{
//	    SourceID:   "/Volumes/music-library/hiphop/song.mp3",
//	    Title:      "Song Name (Clean)",
//	    Artist:     "Artist",
//	    SearchKey:  "Song Name",
//	    TaggedYear: model.YearUnknown,
//	    FoundYear:  1999,
//	}
//
// # Years
//
// Year carries two sentinels. YearUnknown means "no value": a tag without a
// year, or a lookup that has not been attempted yet. YearUnresolved (0)
// means the oracle was asked and gave no usable answer.
//
//	y, ok := model.ParseFourDigitYear("1999") // 1999, true
//	y, ok = model.ParseFourDigitYear("99")    // YearUnresolved, false
package model
