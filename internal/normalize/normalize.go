package normalize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/handiism/trackyear/internal/audio"
	"github.com/handiism/trackyear/internal/model"
)

// Markers are removed from titles, in this order, to build search keys.
var Markers = []string{
	"(Clean)",
	"(Dirty)",
	"(Intro)",
	"(Intro Clean)",
	"(Intro Dirty)",
	"(Intro - Clean)",
	"(Intro - Dirty)",
	"(HH Clean Intro)",
	"(HH Dirty Intro)",
	"(HH Dirty Mixshow)",
	"*",
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05Z"
)

// SearchKey strips every marker from title and trims the result.
func SearchKey(title string) string {
	for _, m := range Markers {
		title = strings.ReplaceAll(title, m, "")
	}
	return strings.TrimSpace(title)
}

// NormalizeYear reduces a raw year tag to a Year.
//
// Four-character values are taken as the year itself, ten-character
// values as YYYY-MM-DD and anything else as a YYYY-MM-DDThh:mm:ssZ
// timestamp. A value that does not fit its branch wraps audio.ErrTagRead.
// A zero year ("0000") counts as absent.
func NormalizeYear(raw string) (model.Year, error) {
	switch len(raw) {
	case 0:
		return model.YearUnknown, nil
	case 4:
		if raw == "0000" {
			return model.YearUnknown, nil
		}
		y, ok := model.ParseFourDigitYear(raw)
		if !ok {
			return model.YearUnknown, fmt.Errorf("%w: year %q is not numeric", audio.ErrTagRead, raw)
		}
		return y, nil
	case len(dateLayout):
		return yearFromLayout(dateLayout, raw)
	default:
		return yearFromLayout(timestampLayout, raw)
	}
}

func yearFromLayout(layout, raw string) (model.Year, error) {
	t, err := time.Parse(layout, raw)
	if err != nil {
		return model.YearUnknown, fmt.Errorf("%w: year %q: %v", audio.ErrTagRead, raw, err)
	}
	if t.Year() <= 0 {
		return model.YearUnknown, nil
	}
	return model.Year(t.Year()), nil
}

// TagReader reads the raw tags of one file.
type TagReader interface {
	Read(path string) (audio.Tags, error)
}

// Normalizer builds TrackRecords from source identifiers.
type Normalizer struct {
	tags TagReader
}

// New creates a Normalizer reading tags through r.
func New(r TagReader) *Normalizer {
	return &Normalizer{tags: r}
}

// Normalize reads the tags of id and returns its record with FoundYear
// unset. Errors wrap audio.ErrTagRead.
func (n *Normalizer) Normalize(id string) (model.TrackRecord, error) {
	tags, err := n.tags.Read(id)
	if err != nil {
		return model.TrackRecord{}, fmt.Errorf("%s: %w", id, err)
	}

	year, err := NormalizeYear(tags.Year)
	if err != nil {
		return model.TrackRecord{}, fmt.Errorf("%s: %w", id, err)
	}

	title := orUnknown(tags.Title)
	return model.TrackRecord{
		SourceID:   id,
		Title:      title,
		Artist:     orUnknown(tags.Artist),
		SearchKey:  SearchKey(title),
		TaggedYear: year,
		FoundYear:  model.YearUnknown,
	}, nil
}

// NormalizeAll normalizes ids in order. The first failure aborts the batch
// since a gap would misalign the snapshot. progress, if non-nil, is called
// after each record.
func (n *Normalizer) NormalizeAll(ctx context.Context, ids []string, progress func(done, total int)) ([]model.TrackRecord, error) {
	records := make([]model.TrackRecord, 0, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := n.Normalize(id)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
		if progress != nil {
			progress(i+1, len(ids))
		}
	}
	return records, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return model.UnknownText
	}
	return s
}
