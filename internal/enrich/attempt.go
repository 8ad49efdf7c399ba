package enrich

import (
	"context"
	"errors"

	"github.com/handiism/trackyear/internal/model"
	"github.com/handiism/trackyear/internal/oracle"
)

// Outcome is the result of one lookup attempt.
type Outcome struct {
	// Year is the found year, or model.YearUnresolved.
	Year model.Year

	// Reason explains an unresolved outcome. Nil when Year is known.
	Reason error
}

// Attempt asks lookup about rec and validates the answer.
//
// Malformed answers and an unavailable oracle become an unresolved
// Outcome. Cancellation and any other oracle error are returned; the
// record must then not be recorded.
func Attempt(ctx context.Context, lookup oracle.Lookup, rec model.TrackRecord) (Outcome, error) {
	text, err := lookup.LookupYear(ctx, rec.SearchKey, rec.Artist)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		if errors.Is(err, oracle.ErrUnavailable) {
			return Outcome{Year: model.YearUnresolved, Reason: err}, nil
		}
		return Outcome{}, err
	}

	year, err := oracle.ParseYear(text)
	if err != nil {
		return Outcome{Year: model.YearUnresolved, Reason: err}, nil
	}
	return Outcome{Year: year}, nil
}
