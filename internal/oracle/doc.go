// Package oracle asks an OpenAI-compatible chat completion endpoint for the
// release year of a track.
//
// The oracle answers in free text. Only an answer of exactly four ASCII
// digits is trusted; ParseYear turns anything else into
// ErrMalformedResponse, which callers record as unresolved.
//
// Each request has its own timeout. Timeouts, 408, 429 and 5xx responses
// are retried with exponential backoff (honoring Retry-After) up to a
// fixed number of attempts. Running out of attempts, or a per-track
// failure such as a 400, yields ErrUnavailable. 401, 403 and 404 mean the
// configuration is wrong for every track and are returned as they are.
//
// Answers can be kept in a SQLite cache so that a track asked about once
// is never paid for again:
//
//	cache, err := oracle.OpenCache("answers.db")
//	lookup := oracle.NewCached(oracle.NewClient(cfg), cache)
//	text, err := lookup.LookupYear(ctx, "Song Name", "Artist")
//	year, err := oracle.ParseYear(text)
package oracle
