package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/handiism/trackyear/internal/enrich"
	"github.com/handiism/trackyear/internal/model"
	"github.com/handiism/trackyear/internal/oracle"
	"github.com/handiism/trackyear/internal/reconcile"
)

// ResultStore is the part of the checkpoint store a review needs.
type ResultStore interface {
	ReadResults() ([]model.TrackRecord, error)
	Rewrite(records []model.TrackRecord) error
}

// Result reports what Apply did.
type Result struct {
	Command Command

	// Outcome is set for CommandRetry.
	Outcome enrich.Outcome

	// Advanced reports whether the session moved to the next record.
	Advanced bool

	// Quit reports that the operator ended the session.
	Quit bool
}

// Session holds the result set and a queue of unresolved records.
type Session struct {
	store   ResultStore
	lookup  oracle.Lookup
	records []model.TrackRecord
	queue   []int
	pos     int
}

// NewSession loads the result set and queues its unresolved records.
func NewSession(store ResultStore, lookup oracle.Lookup) (*Session, error) {
	records, err := store.ReadResults()
	if err != nil {
		return nil, err
	}
	return &Session{
		store:   store,
		lookup:  lookup,
		records: records,
		queue:   reconcile.Select(records, reconcile.CategoryUnresolved),
	}, nil
}

// Current returns the record under review.
func (s *Session) Current() (model.TrackRecord, bool) {
	if s.pos >= len(s.queue) {
		return model.TrackRecord{}, false
	}
	return s.records[s.queue[s.pos]], true
}

// Position returns the 1-based position of the current record and the
// queue length.
func (s *Session) Position() (int, int) {
	return s.pos + 1, len(s.queue)
}

// Remaining returns the number of records not yet reviewed.
func (s *Session) Remaining() int {
	return len(s.queue) - s.pos
}

// Records returns the current result set.
func (s *Session) Records() []model.TrackRecord {
	return s.records
}

// Apply performs decision on the current record.
//
// A retry that resolves, and any override, is written to the result file
// before the session advances. A retry that stays unresolved keeps the
// record current.
func (s *Session) Apply(ctx context.Context, decision Decision) (Result, error) {
	res := Result{Command: decision.Command}
	if decision.Command == CommandQuit {
		res.Quit = true
		return res, nil
	}

	rec, ok := s.Current()
	if !ok {
		return res, errors.New("review: no record to apply to")
	}

	switch decision.Command {
	case CommandSkip:
		s.pos++
		res.Advanced = true

	case CommandOverride:
		if !decision.Year.Known() {
			return res, fmt.Errorf("%w: override year %s", ErrInvalidInput, decision.Year)
		}
		if err := s.set(decision.Year); err != nil {
			return res, err
		}
		res.Advanced = true

	case CommandRetry:
		outcome, err := enrich.Attempt(ctx, s.lookup, rec)
		if err != nil {
			return res, err
		}
		res.Outcome = outcome
		if outcome.Year.Known() {
			if err := s.set(outcome.Year); err != nil {
				return res, err
			}
			res.Advanced = true
		}

	default:
		return res, fmt.Errorf("%w: command %d", ErrInvalidInput, decision.Command)
	}
	return res, nil
}

// set records year on the current record, persists and advances.
func (s *Session) set(year model.Year) error {
	idx := s.queue[s.pos]
	prev := s.records[idx].FoundYear

	s.records[idx].SetFoundYear(year)
	if err := s.store.Rewrite(s.records); err != nil {
		s.records[idx].SetFoundYear(prev)
		return err
	}
	s.pos++
	return nil
}
