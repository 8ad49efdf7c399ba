// Package catalog turns a rekordbox collection export into the ordered
// list of track locations the pipeline works on.
//
// # Manifest Format
//
// rekordbox writes its collection as XML. Every track in the library is a
// TRACK element under COLLECTION, and its file location is a
// percent-encoded URL in the Location attribute:
//
//	<DJ_PLAYLISTS Version="1.0.0">
//	  <COLLECTION Entries="2">
//	    <TRACK TrackID="1" Name="Song" Location="file://localhost/Users/dj/music-library/hiphop/Song%20Name.mp3"/>
//	  </COLLECTION>
//	  <PLAYLISTS>...</PLAYLISTS>
//	</DJ_PLAYLISTS>
//
// TRACK elements under PLAYLISTS only carry a Key and are ignored.
//
// # Extraction
//
//	ex := catalog.NewExtractor(catalog.Filter{
//	    LibraryRoot: "music-library",
//	    Categories:  []string{"hiphop", "top40"},
//	})
//	ids, err := ex.ExtractFile("rekordbox.xml")
//	if errors.Is(err, catalog.ErrParse) {
//	    log.Fatal(err)
//	}
//
// Locations are decoded before filtering, since the filter matches on
// decoded path segments. The result is sorted. Duplicate locations are
// kept; use Duplicates to find them.
package catalog
