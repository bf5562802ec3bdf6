//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"strings"
)

// coverStems and coverExts are tried in order; names match case-insensitively.
var (
	coverStems = []string{"cover", "folder", "album", "front"}
	coverExts  = []string{".jpg", ".png", ".jpeg"}
)

// FindAlbumArt looks for album art in the same directory as the track.
// Returns the path to the art file, or empty string if not found.
func FindAlbumArt(trackPath string) string {
	dir := filepath.Dir(trackPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	byName := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			byName[strings.ToLower(e.Name())] = e.Name()
		}
	}

	for _, stem := range coverStems {
		for _, ext := range coverExts {
			if name, ok := byName[stem+ext]; ok {
				return filepath.Join(dir, name)
			}
		}
	}
	return ""
}
