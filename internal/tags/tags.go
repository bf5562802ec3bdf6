// Package tags reads embedded metadata from music files.
// It covers MP3, FLAC, Ogg (Vorbis and Opus), WAV and M4A.
package tags

import (
	"path/filepath"
	"strconv"
	"strings"
)

// File extensions the tag readers know about.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
	ExtWAV  = ".wav"
)

// Tag holds the metadata segue cares about.
// Zero values mean the field was not present in the file.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	TrackNumber int
	TotalTracks int
	DiscNumber  int
	Date        string
}

// HasTrackNumber reports whether the file carried a usable track number.
// Track 0 is what most taggers write when the field is blank.
func (t *Tag) HasTrackNumber() bool {
	return t != nil && t.TrackNumber > 0
}

// ext returns the lower-cased extension of path.
func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// taglibTags wraps a taglib result map with helper methods.
type taglibTags map[string][]string

// get returns the first value for any of the given keys, or empty string if not found.
func (t taglibTags) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// parseNumberPair parses a track/disc number that may be "N" or "N/M" format.
func (t taglibTags) parseNumberPair(key string) (num, total int) {
	return parseTrackNumber(t.get(key))
}

// parseTrackNumber parses a track number string like "5" or "5/10".
func parseTrackNumber(s string) (num, total int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0
	}
	parts := strings.SplitN(s, "/", 2)
	num, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		total, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return num, total
}
