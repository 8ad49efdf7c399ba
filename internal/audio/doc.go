// Package audio reads and writes the tag metadata of audio files and
// generates playlists from track records.
//
// # Tag Store
//
// The Store dispatches on the file's container:
//
//	store := audio.NewStore(nil)
//	tags, err := store.Read("/music-library/hiphop/song.mp3")
//	fmt.Println(tags.Title, tags.Artist, tags.Year)
//
//	err = store.WriteYear("/music-library/hiphop/song.m4a", 1999)
//	if errors.Is(err, audio.ErrUnsupportedFormat) {
//	    // skip
//	}
//
// Supported containers:
//   - MP3 (ID3v2, via the Tagger)
//   - M4A/MP4 (iTunes ilst atoms)
//
// Tag values are returned raw. Normalizing the year is left to the caller.
//
// # Playlist Generation
//
// Generate playlists of track records in various formats:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("missing", records)
//	os.WriteFile("missing.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
