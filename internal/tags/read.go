package tags

import (
	"errors"
	"os"
	"strconv"

	"github.com/dhowden/tag"
)

// ErrNoTags is returned when a file format carries no tag block we can read.
var ErrNoTags = errors.New("tags: no metadata")

// Read reads tag metadata from a music file.
// dhowden/tag is tried first; each format then has its own fallback reader
// for the files dhowden/tag chokes on.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		switch ext(path) {
		case ExtMP3:
			// dhowden/tag has issues with some UTF-16 encoded ID3 tags
			return readMP3WithID3v2(path)
		case ExtFLAC:
			return readFLACVorbisComments(path)
		case ExtM4A, ExtMP4, ExtOPUS, ExtOGG, ExtOGA:
			// ffmpeg-created M4A and some Ogg files are only readable by TagLib
			return readWithTaglib(path)
		case ExtWAV:
			return nil, ErrNoTags
		}
		return nil, err
	}

	track, totalTracks := m.Track()
	disc, _ := m.Disc()

	albumArtist := m.AlbumArtist()
	if albumArtist == "" {
		albumArtist = m.Artist()
	}

	return &Tag{
		Path:        path,
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: albumArtist,
		Album:       m.Album(),
		TrackNumber: track,
		TotalTracks: totalTracks,
		DiscNumber:  disc,
		Date:        yearToDate(m.Year()),
	}, nil
}

// yearToDate converts a year integer to a date string.
// Returns empty string for year 0.
func yearToDate(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
