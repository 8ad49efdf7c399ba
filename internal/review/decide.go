package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/trackyear/internal/model"
)

// ErrInvalidInput is returned by Decide for unrecognized input.
var ErrInvalidInput = errors.New("invalid review input")

// Command is an operator choice for one record.
type Command int

const (
	CommandRetry Command = iota
	CommandOverride
	CommandSkip
	CommandQuit
)

func (c Command) String() string {
	switch c {
	case CommandRetry:
		return "retry"
	case CommandOverride:
		return "override"
	case CommandSkip:
		return "skip"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Decision is a parsed operator choice. Year is set for CommandOverride.
type Decision struct {
	Command Command
	Year    model.Year
}

// Decide parses operator input: "r" retries the lookup, "s" skips, "q"
// quits, and a four-digit year overrides the found year.
func Decide(input string) (Decision, error) {
	in := strings.ToLower(strings.TrimSpace(input))
	switch in {
	case "r", "retry":
		return Decision{Command: CommandRetry}, nil
	case "s", "skip":
		return Decision{Command: CommandSkip}, nil
	case "q", "quit":
		return Decision{Command: CommandQuit}, nil
	}
	if y, ok := model.ParseFourDigitYear(in); ok {
		return Decision{Command: CommandOverride, Year: y}, nil
	}
	return Decision{}, fmt.Errorf("%w: %q (expected r, s, q or a four-digit year)", ErrInvalidInput, input)
}
