package dto

// XMLTrack is a TRACK element from the COLLECTION of a rekordbox export.
//
// Only the attributes the extractor needs are mapped.
type XMLTrack struct {
	TrackID  string `xml:"TrackID,attr"`
	Name     string `xml:"Name,attr"`
	Artist   string `xml:"Artist,attr"`
	Kind     string `xml:"Kind,attr"`
	Location string `xml:"Location,attr"`
}

