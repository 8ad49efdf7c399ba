package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/trackyear/internal/enrich"
	"github.com/handiism/trackyear/internal/model"
	"github.com/handiism/trackyear/internal/review"
)

type memStore struct {
	records []model.TrackRecord
}

func (m *memStore) ReadResults() ([]model.TrackRecord, error) {
	return append([]model.TrackRecord(nil), m.records...), nil
}

func (m *memStore) Rewrite(records []model.TrackRecord) error {
	m.records = append([]model.TrackRecord(nil), records...)
	return nil
}

type noOracle struct{}

func (noOracle) LookupYear(context.Context, string, string) (string, error) { return "", nil }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReviewModel_SkipAndOverride(t *testing.T) {
	store := &memStore{records: []model.TrackRecord{
		{SourceID: "/a.mp3", Title: "A", Artist: "X", TaggedYear: model.YearUnknown, FoundYear: model.YearUnresolved},
		{SourceID: "/b.mp3", Title: "B", Artist: "X", TaggedYear: model.YearUnknown, FoundYear: model.YearUnresolved},
	}}
	session, err := review.NewSession(store, noOracle{})
	if err != nil {
		t.Fatal(err)
	}

	var m tea.Model = newReviewModel(context.Background(), session)
	m, _ = m.Update(key("s"))
	m, _ = m.Update(key("o"))
	m, _ = m.Update(key("1999"))
	m, _ = m.Update(key("enter"))

	rm := m.(ReviewModel)
	if rm.state != reviewDone {
		t.Errorf("state = %v, want done", rm.state)
	}
	if rm.skipped != 1 || rm.resolved != 1 {
		t.Errorf("skipped=%d resolved=%d, want 1 and 1", rm.skipped, rm.resolved)
	}
	if store.records[1].FoundYear != 1999 {
		t.Errorf("found year = %v, want 1999", store.records[1].FoundYear)
	}
	if store.records[0].FoundYear != model.YearUnresolved {
		t.Errorf("skipped record changed: %v", store.records[0].FoundYear)
	}
}

func TestReviewModel_RejectsBadOverride(t *testing.T) {
	store := &memStore{records: []model.TrackRecord{
		{SourceID: "/a.mp3", Title: "A", Artist: "X", TaggedYear: model.YearUnknown, FoundYear: model.YearUnresolved},
	}}
	session, err := review.NewSession(store, noOracle{})
	if err != nil {
		t.Fatal(err)
	}

	var m tea.Model = newReviewModel(context.Background(), session)
	m, _ = m.Update(key("o"))
	m, _ = m.Update(key("99"))
	m, _ = m.Update(key("enter"))

	rm := m.(ReviewModel)
	if rm.state != reviewOverriding {
		t.Errorf("state = %v, want overriding", rm.state)
	}
	if len(rm.logs) != 1 || rm.logs[0].Level != enrich.LevelWarning {
		t.Errorf("logs = %+v", rm.logs)
	}
}

func TestConfirmModel(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"y", true},
		{"Y", true},
		{"n", false},
		{"enter", false},
		{"esc", false},
	}

	for _, tt := range tests {
		m, cmd := ConfirmModel{title: "Write"}.Update(key(tt.key))
		if cmd == nil {
			t.Errorf("key %q did not quit", tt.key)
		}
		if got := m.(ConfirmModel).confirmed; got != tt.want {
			t.Errorf("key %q confirmed = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestAppendLog(t *testing.T) {
	var logs []LogEntry
	for i := 0; i < 12; i++ {
		logs = appendLog(logs, LogEntry{Message: string(rune('a' + i))}, 10)
	}
	if len(logs) != 10 || logs[0].Message != "c" {
		t.Errorf("appendLog kept %d entries starting at %q", len(logs), logs[0].Message)
	}
}

func TestFinish_KilledProgramWaitsForRun(t *testing.T) {
	running := make(chan struct{})
	var returned bool
	task := newRunTask(context.Background(), func(ctx context.Context) (enrich.Summary, error) {
		close(running)
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		returned = true
		return enrich.Summary{Total: 3, Processed: 1}, ctx.Err()
	})
	go task.start()
	<-running

	summary, err := finish(task, nil, tea.ErrProgramKilled)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("finish() error = %v, want context.Canceled", err)
	}
	if !returned {
		t.Error("finish() returned before the run did")
	}
	if summary.Processed != 1 {
		t.Errorf("finish() summary = %+v, want the run's summary", summary)
	}
}

func TestFinish_OtherProgramError(t *testing.T) {
	task := newRunTask(context.Background(), func(context.Context) (enrich.Summary, error) {
		t.Error("run started after the program failed")
		return enrich.Summary{}, nil
	})
	boom := errors.New("no tty")

	if _, err := finish(task, nil, boom); !errors.Is(err, boom) {
		t.Errorf("finish() error = %v, want %v", err, boom)
	}
	if msg := task.start(); msg != nil {
		t.Errorf("start() after stop = %v, want nil", msg)
	}
}

func TestFinish_CompletedRun(t *testing.T) {
	task := newRunTask(context.Background(), func(context.Context) (enrich.Summary, error) {
		return enrich.Summary{Total: 2, Resolved: 2}, nil
	})
	msg, ok := task.start().(EnrichDoneMsg)
	if !ok {
		t.Fatal("start() did not report the run result")
	}
	final := EnrichModel{task: task, done: true, summary: msg.Summary, err: msg.Err}

	summary, err := finish(task, final, nil)
	if err != nil {
		t.Fatalf("finish() error = %v", err)
	}
	if summary.Resolved != 2 {
		t.Errorf("finish() summary = %+v, want Resolved 2", summary)
	}
}

func TestFinish_QuitBeforeDone(t *testing.T) {
	task := newRunTask(context.Background(), func(context.Context) (enrich.Summary, error) {
		return enrich.Summary{}, nil
	})
	if _, err := finish(task, EnrichModel{task: task}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("finish() error = %v, want context.Canceled", err)
	}
}
