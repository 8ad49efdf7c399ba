package review

import (
	"context"
	"errors"
	"testing"

	"github.com/handiism/trackyear/internal/model"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		input   string
		want    Decision
		wantErr bool
	}{
		{"r", Decision{Command: CommandRetry}, false},
		{" R ", Decision{Command: CommandRetry}, false},
		{"s", Decision{Command: CommandSkip}, false},
		{"q", Decision{Command: CommandQuit}, false},
		{"1999", Decision{Command: CommandOverride, Year: 1999}, false},
		{"0000", Decision{}, true},
		{"99", Decision{}, true},
		{"19999", Decision{}, true},
		{"", Decision{}, true},
		{"x", Decision{}, true},
	}

	for _, tt := range tests {
		got, err := Decide(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Decide(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Decide(%q) error = %v, want ErrInvalidInput", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Decide(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

type memStore struct {
	records  []model.TrackRecord
	rewrites int
	err      error
}

func (m *memStore) ReadResults() ([]model.TrackRecord, error) {
	return append([]model.TrackRecord(nil), m.records...), nil
}

func (m *memStore) Rewrite(records []model.TrackRecord) error {
	if m.err != nil {
		return m.err
	}
	m.rewrites++
	m.records = append([]model.TrackRecord(nil), records...)
	return nil
}

type scriptedOracle struct {
	answers []string
	calls   int
}

func (o *scriptedOracle) LookupYear(ctx context.Context, title, artist string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	answer := o.answers[o.calls]
	o.calls++
	return answer, nil
}

func unresolvedStore() *memStore {
	return &memStore{records: []model.TrackRecord{
		{SourceID: "/a.mp3", Title: "A", Artist: "X", SearchKey: "A", TaggedYear: model.YearUnknown, FoundYear: 1999},
		{SourceID: "/b.mp3", Title: "B", Artist: "X", SearchKey: "B", TaggedYear: 2001, FoundYear: model.YearUnresolved},
		{SourceID: "/c.mp3", Title: "C", Artist: "X", SearchKey: "C", TaggedYear: model.YearUnknown, FoundYear: model.YearUnresolved},
		{SourceID: "/d.mp3", Title: "D", Artist: "X", SearchKey: "D", TaggedYear: model.YearUnknown, FoundYear: model.YearUnresolved},
	}}
}

func TestSession_Flow(t *testing.T) {
	store := unresolvedStore()
	o := &scriptedOracle{answers: []string{"dunno", "1987"}}
	ctx := context.Background()

	s, err := NewSession(store, o)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if s.Remaining() != 3 {
		t.Fatalf("Remaining() = %d, want 3", s.Remaining())
	}

	// Unresolved retry keeps the record current.
	res, err := s.Apply(ctx, Decision{Command: CommandRetry})
	if err != nil {
		t.Fatalf("Apply(retry) error = %v", err)
	}
	if res.Advanced || res.Outcome.Year != model.YearUnresolved {
		t.Errorf("unresolved retry = %+v", res)
	}
	if rec, _ := s.Current(); rec.SourceID != "/b.mp3" {
		t.Errorf("Current() = %s, want /b.mp3", rec.SourceID)
	}

	res, err = s.Apply(ctx, Decision{Command: CommandRetry})
	if err != nil {
		t.Fatalf("Apply(retry) error = %v", err)
	}
	if !res.Advanced || res.Outcome.Year != 1987 {
		t.Errorf("resolved retry = %+v", res)
	}

	if _, err := s.Apply(ctx, Decision{Command: CommandSkip}); err != nil {
		t.Fatalf("Apply(skip) error = %v", err)
	}
	if _, err := s.Apply(ctx, Decision{Command: CommandOverride, Year: 2010}); err != nil {
		t.Fatalf("Apply(override) error = %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("Current() should be exhausted")
	}

	if store.rewrites != 2 {
		t.Errorf("rewrites = %d, want 2", store.rewrites)
	}
	want := []model.Year{1999, 1987, model.YearUnresolved, 2010}
	for i, r := range store.records {
		if r.FoundYear != want[i] {
			t.Errorf("%s found year = %v, want %v", r.SourceID, r.FoundYear, want[i])
		}
	}
}

func TestSession_Quit(t *testing.T) {
	store := unresolvedStore()
	s, err := NewSession(store, &scriptedOracle{})
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Apply(context.Background(), Decision{Command: CommandQuit})
	if err != nil || !res.Quit {
		t.Errorf("Apply(quit) = %+v, %v", res, err)
	}
	if store.rewrites != 0 {
		t.Error("quit should not write")
	}
}

func TestSession_RewriteFailureKeepsRecord(t *testing.T) {
	store := unresolvedStore()
	s, err := NewSession(store, &scriptedOracle{})
	if err != nil {
		t.Fatal(err)
	}
	store.err = errors.New("disk full")

	if _, err := s.Apply(context.Background(), Decision{Command: CommandOverride, Year: 1990}); err == nil {
		t.Fatal("Apply(override) should fail")
	}
	rec, ok := s.Current()
	if !ok || rec.SourceID != "/b.mp3" || rec.FoundYear != model.YearUnresolved {
		t.Errorf("Current() = %+v, %v", rec, ok)
	}
}

func TestSession_CanceledRetry(t *testing.T) {
	s, err := NewSession(unresolvedStore(), &scriptedOracle{answers: []string{"1999"}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Apply(ctx, Decision{Command: CommandRetry}); !errors.Is(err, context.Canceled) {
		t.Errorf("Apply(retry) error = %v, want context.Canceled", err)
	}
}
