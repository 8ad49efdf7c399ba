// Package normalize derives a canonical TrackRecord from a track's tags.
//
// Year tags arrive in three encodings and are reduced to a year:
//
//	"2001"                 -> 2001
//	"2001-05-17"           -> 2001
//	"2001-05-17T00:00:00Z" -> 2001
//	""                     -> unknown
//
// Any other value is a tag read error for that record.
//
// The search key is the title with promotional edit markers such as
// "(Clean)" or "(Intro - Dirty)" removed.
package normalize
