package audio

import (
	"strings"

	"github.com/bogem/id3v2"

	"github.com/handiism/trackyear/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags on write.
type TagEditAction int

const (
	// TagEmpty removes the frame.
	TagEmpty TagEditAction = iota

	// TagModify sets the frame to the found year.
	TagModify

	// TagDoNotModify leaves the existing frame unchanged.
	TagDoNotModify
)

// TagConfig controls which ID3 year frames a write touches.
//
// ID3v2.3 readers look at TYER and ID3v2.4 readers at TDRC, so by default
// both are written.
type TagConfig struct {
	// Year controls the TYER (Year) frame.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Year: TagModify,
		Date: TagModify,
	}
}

// Tagger reads and writes ID3 tags of MP3 files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	tags, err := tagger.ReadTags(path)
//	err = tagger.WriteYear(path, 1999)
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// ReadTags returns the title, artist and year frames of an MP3 file.
//
// The year comes from the frame matching the tag's version, falling back
// to the other one.
func (t *Tagger) ReadTags(path string) (Tags, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, err
	}
	defer tag.Close()

	year := tag.Year()
	if year == "" {
		for _, id := range []string{"TDRC", "TYER"} {
			if v := tag.GetTextFrame(id).Text; v != "" {
				year = v
				break
			}
		}
	}

	return Tags{
		Title:  cleanFrame(tag.Title()),
		Artist: cleanFrame(tag.Artist()),
		Year:   cleanFrame(year),
	}, nil
}

// WriteYear sets the year frames of an MP3 file and saves it.
func (t *Tagger) WriteYear(path string, year model.Year) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	value := year.String()

	// Year (TYER) - ID3v2.3
	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		tag.DeleteFrames("TYER")
		tag.AddTextFrame("TYER", id3v2.EncodingUTF8, value)
	}

	// Date (TDRC) - ID3v2.4
	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		tag.DeleteFrames("TDRC")
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, value)
	}

	return tag.Save()
}

// cleanFrame drops the NUL terminators some encoders leave in text frames.
func cleanFrame(s string) string {
	return strings.Trim(s, "\x00")
}
