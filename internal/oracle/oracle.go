package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/trackyear/internal/model"
)

var (
	// ErrMalformedResponse is returned by ParseYear for anything other
	// than a four-digit year.
	ErrMalformedResponse = errors.New("oracle returned a malformed year")

	// ErrUnavailable is returned when every attempt failed with a
	// retryable error.
	ErrUnavailable = errors.New("oracle unavailable")
)

// Lookup answers year questions. Implementations must be safe for
// concurrent use.
type Lookup interface {
	LookupYear(ctx context.Context, title, artist string) (string, error)
}

// SystemPrompt constrains the answer format.
const SystemPrompt = "You are a music librarian. Answer with the four-digit year the recording " +
	"was first released and nothing else. If you do not know, answer 0."

// Question builds the user prompt for one track.
func Question(title, artist string) string {
	return fmt.Sprintf("%s %s release year", strings.TrimSpace(title), strings.TrimSpace(artist))
}

// ParseYear validates an oracle answer. The answer must be exactly four
// ASCII digits; padding of any kind makes it malformed.
func ParseYear(text string) (model.Year, error) {
	y, ok := model.ParseFourDigitYear(text)
	if !ok {
		return model.YearUnresolved, fmt.Errorf("%w: %q", ErrMalformedResponse, snippet(text))
	}
	return y, nil
}

func snippet(s string) string {
	const limit = 40
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
