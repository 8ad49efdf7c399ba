package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/handiism/trackyear/internal/catalog/dto"
)

// ErrParse is returned when the manifest is absent or has no
// COLLECTION/TRACK structure.
var ErrParse = errors.New("manifest parse error")

// LocalFilePrefix is the scheme marker stripped from decoded locations.
const LocalFilePrefix = "file://localhost"

// Filter decides which locations become candidates.
type Filter struct {
	// LibraryRoot is the directory every candidate must live under.
	// An absolute path is matched as a prefix; a bare name matches any
	// path segment of that name. Empty disables the check.
	LibraryRoot string

	// Categories are substrings of which a candidate must contain at
	// least one. Empty means no category filter.
	Categories []string

	// Extensions optionally restricts candidates to these file
	// extensions (".mp3", "m4a"). Empty accepts every extension.
	Extensions []string
}

// Match reports whether the decoded location id passes the filter.
//
// Category matching is done on NFC-normalized text so that a category
// typed on one platform matches a path exported on another.
func (f Filter) Match(id string) bool {
	if !f.underRoot(id) {
		return false
	}
	if len(f.Extensions) > 0 && !f.hasExtension(id) {
		return false
	}
	if len(f.Categories) == 0 {
		return true
	}
	normID := norm.NFC.String(id)
	for _, c := range f.Categories {
		if c == "" {
			continue
		}
		if strings.Contains(normID, norm.NFC.String(c)) {
			return true
		}
	}
	return false
}

func (f Filter) underRoot(id string) bool {
	root := strings.TrimRight(f.LibraryRoot, "/")
	if f.LibraryRoot == "" {
		return true
	}
	if strings.HasPrefix(root, "/") {
		return strings.HasPrefix(id, root+"/")
	}
	return strings.Contains("/"+id+"/", "/"+strings.Trim(root, "/")+"/")
}

func (f Filter) hasExtension(id string) bool {
	ext := strings.ToLower(path.Ext(id))
	for _, e := range f.Extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if ext == e {
			return true
		}
	}
	return false
}

// Extractor reads manifests and applies a Filter.
type Extractor struct {
	filter Filter
}

// NewExtractor creates an Extractor with the given filter.
func NewExtractor(f Filter) *Extractor {
	return &Extractor{filter: f}
}

// ExtractFile opens the manifest at path and extracts candidates from it.
//
// A missing or unreadable file is reported as ErrParse.
func (e *Extractor) ExtractFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()
	return e.Extract(f)
}

// Extract streams the manifest from r and returns the sorted, decoded,
// filtered locations of every TRACK in the COLLECTION.
func (e *Extractor) Extract(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		ids          []string
		inCollection bool
		seenColl     bool
		trackCount   int
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "COLLECTION":
				inCollection = true
				seenColl = true
			case "TRACK":
				if !inCollection {
					continue
				}
				var track dto.XMLTrack
				if err := decoder.DecodeElement(&track, &el); err != nil {
					return nil, fmt.Errorf("%w: track: %v", ErrParse, err)
				}
				trackCount++
				if track.Location == "" {
					continue
				}
				id := DecodeLocation(track.Location)
				if e.filter.Match(id) {
					ids = append(ids, id)
				}
			}
		case xml.EndElement:
			if el.Name.Local == "COLLECTION" {
				inCollection = false
			}
		}
	}

	if !seenColl {
		return nil, fmt.Errorf("%w: no COLLECTION element", ErrParse)
	}
	if trackCount == 0 {
		return nil, fmt.Errorf("%w: COLLECTION has no TRACK elements", ErrParse)
	}

	sort.Strings(ids)
	return ids, nil
}

// DecodeLocation percent-decodes a Location attribute and strips the
// local-file scheme marker.
//
// Each escape is decoded on its own; a '%' not followed by two hex digits
// is kept literally without affecting the escapes around it.
func DecodeLocation(raw string) string {
	return strings.TrimPrefix(unescapePercent(raw), LocalFilePrefix)
}

func unescapePercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

// Duplicates returns each location that appears more than once in ids,
// in order of first repetition.
func Duplicates(ids []string) []string {
	seen := make(map[string]int, len(ids))
	var dups []string
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
