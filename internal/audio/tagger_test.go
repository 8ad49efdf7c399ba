package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"

	"github.com/handiism/trackyear/internal/model"
)

// writeFakeMP3 creates a file with no tag and some non-tag payload.
func writeFakeMP3(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(path, []byte("\xff\xfbfake mpeg frames"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTagger_ReadTags(t *testing.T) {
	path := writeFakeMP3(t, t.TempDir())

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("id3v2.Open: %v", err)
	}
	tag.SetTitle("Song Name (Clean)")
	tag.SetArtist("Some Artist")
	tag.SetYear("2001-05-17")
	if err := tag.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tag.Close()

	got, err := NewTagger(nil).ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags() error = %v", err)
	}
	want := Tags{Title: "Song Name (Clean)", Artist: "Some Artist", Year: "2001-05-17"}
	if got != want {
		t.Errorf("ReadTags() = %+v, want %+v", got, want)
	}
}

func TestTagger_WriteYear(t *testing.T) {
	path := writeFakeMP3(t, t.TempDir())
	tagger := NewTagger(DefaultTagConfig())

	if err := tagger.WriteYear(path, 1999); err != nil {
		t.Fatalf("WriteYear() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("id3v2.Open: %v", err)
	}
	defer tag.Close()

	if got := tag.GetTextFrame("TYER").Text; got != "1999" {
		t.Errorf("TYER = %q, want %q", got, "1999")
	}
	if got := tag.GetTextFrame("TDRC").Text; got != "1999" {
		t.Errorf("TDRC = %q, want %q", got, "1999")
	}
}

func TestTagger_WriteYearOnlyTYER(t *testing.T) {
	path := writeFakeMP3(t, t.TempDir())
	tagger := NewTagger(&TagConfig{Year: TagModify, Date: TagDoNotModify})

	if err := tagger.WriteYear(path, 1987); err != nil {
		t.Fatalf("WriteYear() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("id3v2.Open: %v", err)
	}
	defer tag.Close()

	if got := tag.GetTextFrame("TDRC").Text; got != "" {
		t.Errorf("TDRC = %q, want empty", got)
	}

	tags, err := tagger.ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags() error = %v", err)
	}
	if tags.Year != "1987" {
		t.Errorf("ReadTags().Year = %q, want fallback to TYER", tags.Year)
	}
}

func TestStore_Check(t *testing.T) {
	dir := t.TempDir()
	mp3 := writeFakeMP3(t, dir)
	wav := filepath.Join(dir, "song.wav")
	os.WriteFile(wav, []byte("RIFF"), 0o644)

	store := NewStore(nil)

	tests := []struct {
		name string
		path string
		want error
	}{
		{"mp3", mp3, nil},
		{"unsupported", wav, ErrUnsupportedFormat},
		{"missing", filepath.Join(dir, "gone.m4a"), ErrFileMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Check(tt.path)
			if tt.want == nil && err != nil {
				t.Errorf("Check() error = %v, want nil", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Check() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStore_ReadErrors(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(nil)

	_, err := store.Read(filepath.Join(dir, "gone.mp3"))
	if !errors.Is(err, ErrTagRead) || !errors.Is(err, ErrFileMissing) {
		t.Errorf("Read(missing) error = %v, want ErrTagRead and ErrFileMissing", err)
	}

	flac := filepath.Join(dir, "song.flac")
	os.WriteFile(flac, []byte("fLaC"), 0o644)
	_, err = store.Read(flac)
	if !errors.Is(err, ErrTagRead) || !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Read(flac) error = %v, want ErrTagRead and ErrUnsupportedFormat", err)
	}
}

func TestStore_WriteYearRoundTrip(t *testing.T) {
	path := writeFakeMP3(t, t.TempDir())
	store := NewStore(nil)

	if err := store.WriteYear(path, model.YearUnresolved); err == nil {
		t.Error("WriteYear(unresolved) should fail")
	}
	if err := store.WriteYear(path, 2003); err != nil {
		t.Fatalf("WriteYear() error = %v", err)
	}

	tags, err := store.Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tags.Year != "2003" {
		t.Errorf("Read().Year = %q, want %q", tags.Year, "2003")
	}
}

func TestDetectContainer(t *testing.T) {
	tests := []struct {
		path string
		want Container
	}{
		{"/a/b.mp3", ContainerMP3},
		{"/a/b.MP3", ContainerMP3},
		{"/a/b.m4a", ContainerM4A},
		{"/a/b.flac", ContainerUnsupported},
		{"/a/b", ContainerUnsupported},
	}

	for _, tt := range tests {
		if got := DetectContainer(tt.path); got != tt.want {
			t.Errorf("DetectContainer(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
