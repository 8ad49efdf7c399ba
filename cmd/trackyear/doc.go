// Command trackyear enriches a rekordbox catalog with release years.
//
// A typical session:
//
//	trackyear config init
//	trackyear extract -q
//	trackyear enrich --workers 4
//	trackyear review
//	trackyear report --category differing
//	trackyear writeback missing
//
// enrich can be interrupted at any point and picks up where it stopped
// the next time it runs against the same result file.
package main
