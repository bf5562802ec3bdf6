package tags

import (
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// readFLACVorbisComments reads the Vorbis comment block of a FLAC file
// directly, for files dhowden/tag cannot parse.
func readFLACVorbisComments(path string) (*Tag, error) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return nil, err
	}

	var cmt *flacvorbis.MetaDataBlockVorbisComment
	for _, meta := range f.Meta {
		if meta.Type != goflac.VorbisComment {
			continue
		}
		cmt, err = flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return nil, err
		}
		break
	}
	if cmt == nil {
		return nil, ErrNoTags
	}

	get := func(keys ...string) string {
		for _, key := range keys {
			if values, err := cmt.Get(key); err == nil && len(values) > 0 {
				return values[0]
			}
		}
		return ""
	}

	artist := get(flacvorbis.FIELD_ARTIST)
	albumArtist := get("ALBUMARTIST", "ALBUM ARTIST")
	if albumArtist == "" {
		albumArtist = artist
	}

	track, total := parseTrackNumber(get(flacvorbis.FIELD_TRACKNUMBER))
	if total == 0 {
		total, _ = parseTrackNumber(get("TOTALTRACKS", "TRACKTOTAL"))
	}
	disc, _ := parseTrackNumber(get("DISCNUMBER"))

	return &Tag{
		Path:        path,
		Title:       get(flacvorbis.FIELD_TITLE),
		Artist:      artist,
		AlbumArtist: albumArtist,
		Album:       get(flacvorbis.FIELD_ALBUM),
		TrackNumber: track,
		TotalTracks: total,
		DiscNumber:  disc,
		Date:        get(flacvorbis.FIELD_DATE, "YEAR"),
	}, nil
}
