package tags

import (
	"github.com/bogem/id3v2/v2"
)

// readMP3WithID3v2 reads MP3 metadata using only the id3v2 library.
// Used when dhowden/tag fails (e.g. on some UTF-16 encoded tags).
func readMP3WithID3v2(path string) (*Tag, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3tag.Close()

	if !id3tag.HasFrames() {
		return nil, ErrNoTags
	}

	artist := id3tag.Artist()
	albumArtist := getID3TextFrame(id3tag, "TPE2")
	if albumArtist == "" {
		albumArtist = artist
	}

	track, totalTracks := parseTrackNumber(getID3TextFrame(id3tag, "TRCK"))
	disc, _ := parseTrackNumber(getID3TextFrame(id3tag, "TPOS"))

	date := getID3TextFrame(id3tag, "TDRC")
	if date == "" {
		date = id3tag.Year()
	}
	if len(date) > 4 {
		date = date[:4]
	}

	return &Tag{
		Path:        path,
		Title:       id3tag.Title(),
		Artist:      artist,
		AlbumArtist: albumArtist,
		Album:       id3tag.Album(),
		TrackNumber: track,
		TotalTracks: totalTracks,
		DiscNumber:  disc,
		Date:        date,
	}, nil
}

// getID3TextFrame reads a text frame value from an ID3v2 tag.
func getID3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}
