package tags

import (
	"go.senan.xyz/taglib"
)

// readWithTaglib reads metadata through TagLib. Used for the containers
// dhowden/tag handles poorly (ffmpeg-muxed M4A, Opus, some Ogg Vorbis).
func readWithTaglib(path string) (*Tag, error) {
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	if len(rawTags) == 0 {
		return nil, ErrNoTags
	}
	tags := taglibTags(rawTags)

	artist := tags.get(taglib.Artist)
	albumArtist := tags.get(taglib.AlbumArtist)
	if albumArtist == "" {
		albumArtist = artist
	}

	track, total := tags.parseNumberPair(taglib.TrackNumber)
	disc, _ := tags.parseNumberPair(taglib.DiscNumber)

	return &Tag{
		Path:        path,
		Title:       tags.get(taglib.Title),
		Artist:      artist,
		AlbumArtist: albumArtist,
		Album:       tags.get(taglib.Album),
		TrackNumber: track,
		TotalTracks: total,
		DiscNumber:  disc,
		Date:        tags.get(taglib.Date),
	}, nil
}
