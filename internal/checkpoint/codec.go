package checkpoint

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/handiism/trackyear/internal/model"
)

// Column headers, in file order.
var (
	SnapshotHeader = []string{"Location", "Title", "Artist", "Search Key", "Tagged Year"}
	ResultHeader   = append(append([]string{}, SnapshotHeader...), "Found Year")
)

// ErrFormat is returned for rows or headers that do not match the layout.
var ErrFormat = errors.New("checkpoint file format error")

// quoteRow writes fields with every field quoted, ending in a newline.
func quoteRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

func snapshotFields(r model.TrackRecord) []string {
	return []string{r.SourceID, r.Title, r.Artist, r.SearchKey, r.TaggedYear.String()}
}

func resultFields(r model.TrackRecord) []string {
	return append(snapshotFields(r), r.FoundYear.String())
}

// EncodeResult returns one result row.
func EncodeResult(r model.TrackRecord) []byte {
	var buf bytes.Buffer
	quoteRow(&buf, resultFields(r))
	return buf.Bytes()
}

// EncodeResults returns a complete result file: header and rows.
func EncodeResults(records []model.TrackRecord) []byte {
	var buf bytes.Buffer
	quoteRow(&buf, ResultHeader)
	for _, r := range records {
		quoteRow(&buf, resultFields(r))
	}
	return buf.Bytes()
}

// EncodeSnapshot returns a complete snapshot file: header and rows.
func EncodeSnapshot(records []model.TrackRecord) []byte {
	var buf bytes.Buffer
	quoteRow(&buf, SnapshotHeader)
	for _, r := range records {
		quoteRow(&buf, snapshotFields(r))
	}
	return buf.Bytes()
}

// DecodeResults reads a result file.
func DecodeResults(r io.Reader) ([]model.TrackRecord, error) {
	return decode(r, ResultHeader)
}

// DecodeSnapshot reads a snapshot file. FoundYear is YearUnknown in every
// returned record.
func DecodeSnapshot(r io.Reader) ([]model.TrackRecord, error) {
	return decode(r, SnapshotHeader)
}

func decode(r io.Reader, header []string) ([]model.TrackRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(header)

	head, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}
	for i := range header {
		if strings.TrimSpace(head[i]) != header[i] {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrFormat, i+1, head[i], header[i])
		}
	}

	var records []model.TrackRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		rec, err := decodeRow(row)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// intactLength returns the length of the leading run of complete rows in
// data. A trailing partial row is excluded only when it has not yet reached
// a row end; quoted fields may span lines. Anything else is left for the
// decoder to report.
func intactLength(data []byte) int64 {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var keep int64
	for {
		_, err := reader.Read()
		if err == io.EOF {
			return keep
		}
		off := reader.InputOffset()
		if err != nil || data[off-1] != '\n' {
			break
		}
		keep = off
	}
	if hasRowEnd(data[keep:]) {
		return int64(len(data))
	}
	return keep
}

// hasRowEnd reports whether tail contains a newline outside quotes.
func hasRowEnd(tail []byte) bool {
	quoted := false
	for _, b := range tail {
		switch {
		case b == '"':
			quoted = !quoted
		case b == '\n' && !quoted:
			return true
		}
	}
	return false
}

func decodeRow(row []string) (model.TrackRecord, error) {
	tagged, err := model.ParseYear(row[4])
	if err != nil {
		return model.TrackRecord{}, fmt.Errorf("tagged year: %w", err)
	}
	rec := model.TrackRecord{
		SourceID:   row[0],
		Title:      row[1],
		Artist:     row[2],
		SearchKey:  row[3],
		TaggedYear: tagged,
		FoundYear:  model.YearUnknown,
	}
	if len(row) > 5 {
		found, err := model.ParseYear(row[5])
		if err != nil {
			return model.TrackRecord{}, fmt.Errorf("found year: %w", err)
		}
		rec.FoundYear = found
	}
	return rec, nil
}
