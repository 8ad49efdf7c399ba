package reconcile

import (
	"errors"
	"fmt"

	"github.com/handiism/trackyear/internal/audio"
	"github.com/handiism/trackyear/internal/model"
)

// Action is what write-back will do with one record.
type Action int

const (
	ActionWrite Action = iota
	ActionSkipUnsupported
	ActionSkipMissingFile
)

func (a Action) String() string {
	switch a {
	case ActionWrite:
		return "write"
	case ActionSkipUnsupported:
		return "skip (unsupported format)"
	case ActionSkipMissingFile:
		return "skip (file missing)"
	default:
		return "unknown"
	}
}

// Step is one planned write-back.
type Step struct {
	// Index is the record's position in the result set.
	Index  int
	Record model.TrackRecord
	Action Action

	// Reason is set for skip actions.
	Reason error
}

// Checker reports whether a file can be tagged.
type Checker interface {
	Check(path string) error
}

// Plan selects the records of category c and decides the action for
// each. c must be CategoryMissing or CategoryDiffering. Unexpected check
// failures (permissions, I/O) are returned as errors.
func Plan(records []model.TrackRecord, c Category, checker Checker) ([]Step, error) {
	if !c.Writable() {
		return nil, fmt.Errorf("category %s cannot be written back", c)
	}

	var steps []Step
	for _, idx := range Select(records, c) {
		step := Step{Index: idx, Record: records[idx], Action: ActionWrite}
		if err := checker.Check(step.Record.SourceID); err != nil {
			switch {
			case errors.Is(err, audio.ErrUnsupportedFormat):
				step.Action = ActionSkipUnsupported
			case errors.Is(err, audio.ErrFileMissing):
				step.Action = ActionSkipMissingFile
			default:
				return nil, fmt.Errorf("check %s: %w", step.Record.SourceID, err)
			}
			step.Reason = err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// Writes counts the steps that will write.
func Writes(steps []Step) int {
	n := 0
	for _, s := range steps {
		if s.Action == ActionWrite {
			n++
		}
	}
	return n
}
