package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/trackyear/internal/model"
)

func rec(id string, tagged, found model.Year) model.TrackRecord {
	return model.TrackRecord{
		SourceID:   id,
		Title:      "Title " + id,
		Artist:     "Artist",
		SearchKey:  "Title " + id,
		TaggedYear: tagged,
		FoundYear:  found,
	}
}

func snapshotOf(ids ...string) []model.TrackRecord {
	out := make([]model.TrackRecord, len(ids))
	for i, id := range ids {
		out[i] = rec(id, model.YearUnknown, model.YearUnknown)
	}
	return out
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "results.csv"), filepath.Join(dir, "snapshot.csv"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEncodeResult_QuotesEveryField(t *testing.T) {
	r := model.TrackRecord{
		SourceID:   `/lib/a, "b".mp3`,
		Title:      "A",
		Artist:     model.UnknownText,
		SearchKey:  "A",
		TaggedYear: model.YearUnknown,
		FoundYear:  model.YearUnresolved,
	}
	assert.Equal(t, `"/lib/a, ""b"".mp3","A","unknown","A","unknown","0"`+"\n", string(EncodeResult(r)))
}

func TestCodec_RoundTrip(t *testing.T) {
	records := []model.TrackRecord{
		rec("/lib/a,1.mp3", 2001, 1999),
		rec("/lib/\"b\".mp3", model.YearUnknown, model.YearUnresolved),
		rec("/lib/c\nd.mp3", 1987, 1987),
	}

	got, err := DecodeResults(strings.NewReader(string(EncodeResults(records))))
	require.NoError(t, err)
	assert.Equal(t, records, got)

	snap, err := DecodeSnapshot(strings.NewReader(string(EncodeSnapshot(records))))
	require.NoError(t, err)
	require.Len(t, snap, 3)
	assert.Equal(t, model.YearUnknown, snap[0].FoundYear)
	assert.Equal(t, model.Year(2001), snap[0].TaggedYear)
}

func TestDecode_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong header", `"Path","Title","Artist","Search Key","Tagged Year","Found Year"` + "\n"},
		{"short row", string(EncodeResults(nil)) + `"a","b","c"` + "\n"},
		{"bad year", string(EncodeResults(nil)) + `"a","b","c","d","19xx","0"` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResults(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestCursor(t *testing.T) {
	snapshot := snapshotOf("a", "b", "c", "d")

	k, err := Cursor(snapshot, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, k)

	k, err = Cursor(snapshot, []model.TrackRecord{rec("a", 0, 1999), rec("b", 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, 2, k)

	_, err = Cursor(snapshot, []model.TrackRecord{rec("a", 0, 1999), rec("z", 0, 0)})
	assert.ErrorIs(t, err, ErrResume)

	_, err = Cursor(snapshot, []model.TrackRecord{rec("b", 0, 1999), rec("b", 0, 0)})
	assert.ErrorIs(t, err, ErrResume)

	_, err = Cursor(snapshotOf("a"), []model.TrackRecord{rec("a", 0, 1), rec("a", 0, 1)})
	assert.ErrorIs(t, err, ErrResume)
}

func TestOutstanding(t *testing.T) {
	snapshot := snapshotOf("a", "b", "a", "c", "d")

	pending, err := Outstanding(snapshot, []model.TrackRecord{rec("c", 0, 1), rec("a", 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, pending)

	pending, err = Outstanding(snapshot, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, pending)

	_, err = Outstanding(snapshot, []model.TrackRecord{rec("x", 0, 1)})
	assert.ErrorIs(t, err, ErrResume)

	_, err = Outstanding(snapshot, []model.TrackRecord{rec("b", 0, 1), rec("b", 0, 1)})
	assert.ErrorIs(t, err, ErrResume)
}

func TestMerge(t *testing.T) {
	snapshot := snapshotOf("a", "b", "c")
	results := []model.TrackRecord{rec("c", 0, 3), rec("a", 0, 1)}

	merged := Merge(snapshot, results)
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].SourceID)
	assert.Equal(t, "c", merged[1].SourceID)
}

func TestStore_Lifecycle(t *testing.T) {
	store := openTestStore(t)

	st, err := store.Inspect()
	require.NoError(t, err)
	assert.True(t, st.Fresh())

	snapshot := snapshotOf("a", "b", "c")
	require.NoError(t, store.WriteSnapshot(snapshot))

	st, err = store.Inspect()
	require.NoError(t, err)
	assert.True(t, st.HasSnapshot)
	assert.True(t, st.HasResults)

	got, err := store.ReadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)

	require.NoError(t, store.Append(rec("a", model.YearUnknown, 1999)))
	require.NoError(t, store.Append(rec("b", model.YearUnknown, 0)))

	results, err := store.ReadResults()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, model.Year(1999), results[0].FoundYear)
	assert.Equal(t, model.YearUnresolved, results[1].FoundYear)

	results[0].TaggedYear = 1999
	require.NoError(t, store.Rewrite(results))
	require.NoError(t, store.Append(rec("c", model.YearUnknown, 2001)))

	results, err = store.ReadResults()
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, model.Year(1999), results[0].TaggedYear)
	assert.Equal(t, "c", results[2].SourceID)
}

func TestStore_RepairTornTail(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.WriteSnapshot(snapshotOf("a", "b")))
	require.NoError(t, store.Append(rec("a", 0, 1999)))

	f, err := os.OpenFile(store.ResultPath(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`"b","Title b","Art`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = store.ReadResults()
	require.Error(t, err)

	dropped, err := store.Repair()
	require.NoError(t, err)
	assert.Equal(t, int64(len(`"b","Title b","Art`)), dropped)

	results, err := store.ReadResults()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].SourceID)
}

func TestStore_RepairTornRowWithMultilineTitle(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.WriteSnapshot(snapshotOf("a", "b")))
	require.NoError(t, store.Append(rec("a", 0, 1999)))

	multi := rec("b", model.YearUnknown, 2004)
	multi.Title = "B\nline2"
	row := EncodeResult(multi)
	torn := row[:len(row)-5]

	f, err := os.OpenFile(store.ResultPath(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write(torn)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	dropped, err := store.Repair()
	require.NoError(t, err)
	assert.Equal(t, int64(len(torn)), dropped)

	results, err := store.ReadResults()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].SourceID)

	require.NoError(t, store.Append(multi))
	results, err = store.ReadResults()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "B\nline2", results[1].Title)
}

func TestIntactLength(t *testing.T) {
	header := string(EncodeResults(nil))
	full := string(EncodeResult(rec("a", 0, 1999)))
	multi := rec("b", 0, 2004)
	multi.Title = "B\nline2"
	multiRow := string(EncodeResult(multi))

	tests := []struct {
		name string
		data string
		want int
	}{
		{"empty", "", 0},
		{"header only", header, len(header)},
		{"complete rows", header + full + multiRow, len(header + full + multiRow)},
		{"torn header", `"Loca`, 0},
		{"torn plain row", header + full + `"b","Title b","Art`, len(header + full)},
		{"torn inside quoted newline", header + full + multiRow[:len(multiRow)-5], len(header + full)},
		{"cut right after quoted newline", header + full + `"b","B` + "\n", len(header + full)},
		{"row missing final newline", header + full[:len(full)-1], len(header)},
		{"corrupt row followed by rows", header + `"x"y` + "\n" + full, len(header + `"x"y` + "\n" + full)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, int64(tt.want), intactLength([]byte(tt.data)))
		})
	}
}

func TestStore_RepairRestoresHeader(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, os.WriteFile(store.ResultPath(), []byte(`"Loca`), 0o644))

	_, err := store.Repair()
	require.NoError(t, err)

	data, err := os.ReadFile(store.ResultPath())
	require.NoError(t, err)
	assert.Equal(t, string(EncodeResults(nil)), string(data))
}

func TestStore_ResultsWithoutSnapshot(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, os.WriteFile(store.ResultPath(), EncodeResults(nil), 0o644))

	_, err := store.Inspect()
	assert.True(t, errors.Is(err, ErrResume))
}

func TestOpen_Locked(t *testing.T) {
	dir := t.TempDir()
	result := filepath.Join(dir, "results.csv")
	snapshot := filepath.Join(dir, "snapshot.csv")

	first, err := Open(result, snapshot)
	require.NoError(t, err)

	_, err = Open(result, snapshot)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Close())

	again, err := Open(result, snapshot)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}
