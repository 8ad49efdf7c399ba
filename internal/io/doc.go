// Package ioutils provides the durable file primitives the checkpoint
// files are built on.
//
// This package contains functions for:
//   - Appending a record and forcing it to stable storage
//   - Replacing a file atomically (temp file, fsync, rename)
//   - Trimming a torn final row left by a crash mid-append
//   - Directory creation
//
// # Appending
//
//	f, err := ioutils.OpenAppend("/data/track-years.csv")
//	err = ioutils.AppendSync(f, []byte(`"a","b"`+"\n"))
//
// # Replacing
//
//	err := ioutils.WriteFileAtomic("/data/track-manifest.csv", content)
//
// Readers never observe a half-written file: they see either the old
// content or the new content.
package ioutils
