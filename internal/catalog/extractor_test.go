package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleManifest = `<?xml version="1.0" encoding="UTF-8"?>
<DJ_PLAYLISTS Version="1.0.0">
  <PRODUCT Name="rekordbox" Version="6.7.4"/>
  <COLLECTION Entries="6">
    <TRACK TrackID="1" Name="Zed" Location="file://localhost/Users/dj/music-library/top40/Zed%20Song%20(Clean).mp3"/>
    <TRACK TrackID="2" Name="Alpha" Location="file://localhost/Users/dj/music-library/hiphop/Alpha%20%26%20Omega.m4a"/>
    <TRACK TrackID="3" Name="Other" Location="file://localhost/Users/dj/music-library/house/Other.mp3"/>
    <TRACK TrackID="4" Name="Outside" Location="file://localhost/Users/dj/Downloads/hiphop/Outside.mp3"/>
    <TRACK TrackID="5" Name="Plus" Location="file://localhost/Users/dj/music-library/rnb/A+B.mp3"/>
    <TRACK TrackID="6" Name="Stream"/>
  </COLLECTION>
  <PLAYLISTS>
    <NODE Type="0" Name="ROOT" Count="1">
      <NODE Name="set" Type="1" KeyType="0" Entries="1">
        <TRACK Key="1"/>
      </NODE>
    </NODE>
  </PLAYLISTS>
</DJ_PLAYLISTS>`

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name: "root and categories",
			filter: Filter{
				LibraryRoot: "music-library",
				Categories:  []string{"alt-rock", "hiphop", "reggae", "rnb", "top40"},
			},
			want: []string{
				"/Users/dj/music-library/hiphop/Alpha & Omega.m4a",
				"/Users/dj/music-library/rnb/A+B.mp3",
				"/Users/dj/music-library/top40/Zed Song (Clean).mp3",
			},
		},
		{
			name:   "empty category set means no filter",
			filter: Filter{LibraryRoot: "music-library"},
			want: []string{
				"/Users/dj/music-library/hiphop/Alpha & Omega.m4a",
				"/Users/dj/music-library/house/Other.mp3",
				"/Users/dj/music-library/rnb/A+B.mp3",
				"/Users/dj/music-library/top40/Zed Song (Clean).mp3",
			},
		},
		{
			name:   "absolute root",
			filter: Filter{LibraryRoot: "/Users/dj/Downloads"},
			want:   []string{"/Users/dj/Downloads/hiphop/Outside.mp3"},
		},
		{
			name:   "extension filter",
			filter: Filter{LibraryRoot: "music-library", Extensions: []string{"m4a"}},
			want:   []string{"/Users/dj/music-library/hiphop/Alpha & Omega.m4a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExtractor(tt.filter).Extract(strings.NewReader(sampleManifest))
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractor_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"not xml", "this is not xml <"},
		{"no collection", `<DJ_PLAYLISTS><PLAYLISTS><TRACK Key="1"/></PLAYLISTS></DJ_PLAYLISTS>`},
		{"empty collection", `<DJ_PLAYLISTS><COLLECTION Entries="0"></COLLECTION></DJ_PLAYLISTS>`},
		{"truncated", `<DJ_PLAYLISTS><COLLECTION><TRACK Location="x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor(Filter{}).Extract(strings.NewReader(tt.xml))
			if !errors.Is(err, ErrParse) {
				t.Errorf("Extract() error = %v, want ErrParse", err)
			}
		})
	}
}

func TestExtractor_ExtractFile(t *testing.T) {
	ex := NewExtractor(Filter{LibraryRoot: "music-library", Categories: []string{"top40"}})

	if _, err := ex.ExtractFile(filepath.Join(t.TempDir(), "missing.xml")); !errors.Is(err, ErrParse) {
		t.Errorf("ExtractFile(missing) error = %v, want ErrParse", err)
	}

	path := filepath.Join(t.TempDir(), "rekordbox.xml")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ex.ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile() error = %v", err)
	}
	if len(got) != 1 || got[0] != "/Users/dj/music-library/top40/Zed Song (Clean).mp3" {
		t.Errorf("ExtractFile() = %q", got)
	}
}

func TestDecodeLocation(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"file://localhost/a/b%20c.mp3", "/a/b c.mp3"},
		{"file://localhost/a/caf%C3%A9.mp3", "/a/café.mp3"},
		{"file://localhost/a/100%.mp3", "/a/100%.mp3"},
		{"file://localhost/a/100%20Pure%.mp3", "/a/100 Pure%.mp3"},
		{"file://localhost/a/%zz%41b%2", "/a/%zzAb%2"},
		{"file://localhost/a/%2541.mp3", "/a/%41.mp3"},
		{"file://localhost/a/b+c.mp3", "/a/b+c.mp3"},
		{"/plain/path.mp3", "/plain/path.mp3"},
	}

	for _, tt := range tests {
		if got := DecodeLocation(tt.raw); got != tt.want {
			t.Errorf("DecodeLocation(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFilter_MatchNormalization(t *testing.T) {
	f := Filter{Categories: []string{"caf\u00e9"}}
	if !f.Match("/music-library/cafe\u0301/x.mp3") {
		t.Error("Match() = false for canonically equal category")
	}
}

func TestExtract_KeepsDuplicates(t *testing.T) {
	xml := `<DJ_PLAYLISTS><COLLECTION>
		<TRACK Location="file://localhost/lib/a.mp3"/>
		<TRACK Location="file://localhost/lib/a.mp3"/>
		<TRACK Location="file://localhost/lib/b.mp3"/>
	</COLLECTION></DJ_PLAYLISTS>`

	got, err := NewExtractor(Filter{}).Extract(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Extract() = %q, want 3 entries", got)
	}
	if dups := Duplicates(got); !reflect.DeepEqual(dups, []string{"/lib/a.mp3"}) {
		t.Errorf("Duplicates() = %q", dups)
	}
}
