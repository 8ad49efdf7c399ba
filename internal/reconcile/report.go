package reconcile

import (
	"github.com/handiism/trackyear/internal/audio"
	ioutils "github.com/handiism/trackyear/internal/io"
	"github.com/handiism/trackyear/internal/model"
)

// Records returns copies of the records in category c.
func Records(records []model.TrackRecord, c Category) []model.TrackRecord {
	idx := Select(records, c)
	out := make([]model.TrackRecord, len(idx))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out
}

// WritePlaylist writes records to path as a playlist named after c.
func WritePlaylist(path string, format audio.PlaylistFormat, extended bool, c Category, records []model.TrackRecord) error {
	content := audio.NewPlaylistCreator(format, extended).CreatePlaylist(c.String(), records)
	return ioutils.WriteFileAtomic(path, []byte(content))
}
