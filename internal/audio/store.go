package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/trackyear/internal/model"
)

var (
	// ErrTagRead is returned when a file's metadata cannot be opened.
	ErrTagRead = errors.New("tag read error")

	// ErrUnsupportedFormat is returned for containers the store cannot tag.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileMissing is returned when the file does not exist.
	ErrFileMissing = errors.New("audio file missing")
)

// Container identifies how a file's tags are stored.
type Container int

const (
	// ContainerUnsupported is any container the store cannot handle.
	ContainerUnsupported Container = iota

	// ContainerMP3 is an MPEG audio file with ID3v2 tags.
	ContainerMP3

	// ContainerM4A is an ISO base media file with iTunes metadata.
	ContainerM4A
)

// String returns the container name.
func (c Container) String() string {
	switch c {
	case ContainerMP3:
		return "mp3"
	case ContainerM4A:
		return "m4a"
	default:
		return "unsupported"
	}
}

// DetectContainer resolves the container from the file extension.
func DetectContainer(path string) Container {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return ContainerMP3
	case ".m4a", ".mp4", ".aac", ".alac":
		return ContainerM4A
	default:
		return ContainerUnsupported
	}
}

// Tags holds the raw tag values of one file. Absent values are empty.
type Tags struct {
	Title  string
	Artist string
	Year   string
}

// Store reads and writes tags across the supported containers.
type Store struct {
	tagger *Tagger
}

// NewStore creates a Store. If config is nil, DefaultTagConfig() is used
// for MP3 writes.
func NewStore(config *TagConfig) *Store {
	return &Store{tagger: NewTagger(config)}
}

// Check reports whether path can be tagged: nil, ErrUnsupportedFormat or
// ErrFileMissing.
func (s *Store) Check(path string) error {
	if DetectContainer(path) == ContainerUnsupported {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileMissing, path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileMissing, path)
	}
	return nil
}

// Read returns the raw title, artist and year tags of path.
//
// Every failure wraps ErrTagRead, together with ErrUnsupportedFormat or
// ErrFileMissing where one of those is the cause.
func (s *Store) Read(path string) (Tags, error) {
	if err := s.Check(path); err != nil {
		return Tags{}, fmt.Errorf("%w: %w", ErrTagRead, err)
	}

	var (
		tags Tags
		err  error
	)
	switch DetectContainer(path) {
	case ContainerMP3:
		tags, err = s.tagger.ReadTags(path)
	case ContainerM4A:
		tags, err = readMP4Tags(path)
	}
	if err != nil {
		return Tags{}, fmt.Errorf("%w: %s: %w", ErrTagRead, path, err)
	}
	return tags, nil
}

// WriteYear stores year in the file's year tag.
//
// Returns ErrUnsupportedFormat or ErrFileMissing (wrapped) when the file
// cannot be tagged at all. Only known years are written.
func (s *Store) WriteYear(path string, year model.Year) error {
	if !year.Known() {
		return fmt.Errorf("refusing to write year %s", year)
	}
	if err := s.Check(path); err != nil {
		return err
	}

	switch DetectContainer(path) {
	case ContainerMP3:
		return s.tagger.WriteYear(path, year)
	case ContainerM4A:
		return writeMP4Year(path, year.String())
	}
	return ErrUnsupportedFormat
}
