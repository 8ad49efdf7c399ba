package reconcile

import (
	"fmt"
	"strings"

	"github.com/handiism/trackyear/internal/model"
)

// Category is the reconciliation class of one record.
type Category int

const (
	CategoryPending Category = iota
	CategoryMissing
	CategoryDiffering
	CategoryMatching
	CategoryUnresolved
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryMissing,
	CategoryDiffering,
	CategoryMatching,
	CategoryUnresolved,
	CategoryPending,
}

func (c Category) String() string {
	switch c {
	case CategoryMissing:
		return "missing"
	case CategoryDiffering:
		return "differing"
	case CategoryMatching:
		return "matching"
	case CategoryUnresolved:
		return "unresolved"
	default:
		return "pending"
	}
}

// Writable reports whether records of this category may be written back.
func (c Category) Writable() bool {
	return c == CategoryMissing || c == CategoryDiffering
}

// ParseCategory maps a category name.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(name), c.String()) {
			return c, nil
		}
	}
	return CategoryPending, fmt.Errorf("unknown category %q", name)
}

// IsMissing reports whether r has no tagged year but a resolved found year.
func IsMissing(r model.TrackRecord) bool {
	return !r.TaggedYear.Known() && r.FoundYear.Known()
}

// IsDiffering reports whether r's resolved found year disagrees with a
// known tagged year.
func IsDiffering(r model.TrackRecord) bool {
	return r.TaggedYear.Known() && r.FoundYear.Known() && r.FoundYear != r.TaggedYear
}

// Classify returns the category of r.
func Classify(r model.TrackRecord) Category {
	switch {
	case r.FoundYear == model.YearUnresolved:
		return CategoryUnresolved
	case !r.Attempted():
		return CategoryPending
	case IsMissing(r):
		return CategoryMissing
	case IsDiffering(r):
		return CategoryDiffering
	default:
		return CategoryMatching
	}
}

// Select returns the positions of records in category c, in order.
func Select(records []model.TrackRecord, c Category) []int {
	var out []int
	for i, r := range records {
		if Classify(r) == c {
			out = append(out, i)
		}
	}
	return out
}

// Counts holds the number of records per category.
type Counts map[Category]int

// Count classifies every record.
func Count(records []model.TrackRecord) Counts {
	counts := make(Counts, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, r := range records {
		counts[Classify(r)]++
	}
	return counts
}
