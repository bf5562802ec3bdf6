package library

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"go.uber.org/zap"

	"github.com/llehouerou/segue/internal/tags"
)

// Placeholders shown when a file carries no artist or album tag.
const (
	UnknownArtist = "Unknown artist"
	UnknownAlbum  = "Unknown album"
)

// TrackRecord is the metadata extracted once per audio file.
// Nil pointer fields mean the value was absent.
type TrackRecord struct {
	Path           string
	TagNumber      *int
	TagTitle       *string
	FilenameNumber *int
	CreatedAt      time.Time

	Artist string
	Album  string
	Size   int64
}

// Title returns the tag title, or the file name without extension.
func (r TrackRecord) Title() string {
	if r.TagTitle != nil && *r.TagTitle != "" {
		return *r.TagTitle
	}
	return stem(r.Path)
}

// ArtistOrUnknown returns the artist tag or UnknownArtist.
func (r TrackRecord) ArtistOrUnknown() string {
	if r.Artist == "" {
		return UnknownArtist
	}
	return r.Artist
}

// AlbumOrUnknown returns the album tag or UnknownAlbum.
func (r TrackRecord) AlbumOrUnknown() string {
	if r.Album == "" {
		return UnknownAlbum
	}
	return r.Album
}

// ExtractionError wraps a tag read failure. Extract recovers from it;
// it only reaches the debug log.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extract reads the metadata of a single file. It never fails: missing or
// unreadable tags leave the tag fields absent.
func Extract(path string) TrackRecord {
	return extract(path, zap.NewNop())
}

func extract(path string, logger *zap.Logger) TrackRecord {
	rec := TrackRecord{
		Path:           path,
		FilenameNumber: filenameNumber(path),
	}

	if ts, err := times.Stat(path); err == nil {
		rec.CreatedAt = creationTime(ts)
	} else {
		logger.Debug("stat failed", zap.String("path", path), zap.Error(err))
	}
	if info, err := os.Stat(path); err == nil {
		rec.Size = info.Size()
	}

	t, err := tags.Read(path)
	if err != nil {
		logger.Debug("tags unavailable", zap.Error(&ExtractionError{Path: path, Err: err}))
		return rec
	}

	if t.HasTrackNumber() {
		n := t.TrackNumber
		rec.TagNumber = &n
	}
	if t.Title != "" {
		title := t.Title
		rec.TagTitle = &title
	}
	rec.Artist = t.Artist
	rec.Album = t.Album
	return rec
}

// creationTime picks the best available creation timestamp.
func creationTime(ts times.Timespec) time.Time {
	if ts.HasBirthTime() {
		return ts.BirthTime()
	}
	if ts.HasChangeTime() {
		return ts.ChangeTime()
	}
	return ts.ModTime()
}

// filenameNumber parses the leading ASCII digit run of the base name.
func filenameNumber(path string) *int {
	name := stem(path)
	n := 0
	digits := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < '0' || c > '9' {
			break
		}
		d := int(c - '0')
		if n > (math.MaxInt-d)/10 {
			return nil
		}
		n = n*10 + d
		digits++
	}
	if digits == 0 {
		return nil
	}
	return &n
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
