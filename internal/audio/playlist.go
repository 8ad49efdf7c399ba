package audio

import (
	"fmt"
	"strings"

	"github.com/handiism/trackyear/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// ParsePlaylistFormat maps a format name ("m3u", "pls", "wpl", "zpl").
func ParsePlaylistFormat(name string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "m3u", "m3u8", "":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	case "wpl":
		return FormatWPL, nil
	case "zpl":
		return FormatZPL, nil
	}
	return FormatM3U, fmt.Errorf("unknown playlist format %q", name)
}

// Extension returns the file extension for the format, with the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// PlaylistCreator generates playlist files from track records.
//
// Records come from all over the library, so entries use the full
// SourceID rather than a path relative to the playlist.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist("differing", records)
//
//	// Result:
//	// #EXTM3U
//	// #PLAYLIST:differing
//	// #EXTINF:-1,Artist - Song Title
//	// /music-library/top40/Song Title.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for other formats)
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content named title for records.
func (p *PlaylistCreator) CreatePlaylist(title string, records []model.TrackRecord) string {
	switch p.format {
	case FormatM3U:
		return p.createM3U(title, records)
	case FormatPLS:
		return p.createPLS(records)
	case FormatWPL:
		return p.createWPL(title, records)
	case FormatZPL:
		return p.createZPL(title, records)
	default:
		return p.createM3U(title, records)
	}
}

// createM3U generates an M3U playlist. Durations are not known, so EXTINF
// uses -1.
func (p *PlaylistCreator) createM3U(title string, records []model.TrackRecord) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
		sb.WriteString(fmt.Sprintf("#PLAYLIST:%s\n", title))
	}

	for _, r := range records {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:-1,%s - %s\n", r.Artist, r.Title))
		}
		sb.WriteString(r.SourceID + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=/music-library/top40/song.mp3
//	Title1=Artist - Song Title
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(records []model.TrackRecord) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, r := range records {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, r.SourceID))
		sb.WriteString(fmt.Sprintf("Title%d=%s - %s\n", idx, r.Artist, r.Title))
		sb.WriteString(fmt.Sprintf("Length%d=-1\n", idx))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(records)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(title string, records []model.TrackRecord) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, r := range records {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\"/>\n", escapeXML(r.SourceID)))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist with track title and
// artist attributes.
func (p *PlaylistCreator) createZPL(title string, records []model.TrackRecord) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("    <meta name=\"Generator\" content=\"trackyear\"/>\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(records)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, r := range records {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\"/>\n",
			escapeXML(r.SourceID),
			escapeXML(r.Title),
			escapeXML(r.Artist)))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
//
// Replaces: & < > " '
// With:     &amp; &lt; &gt; &quot; &apos;
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
