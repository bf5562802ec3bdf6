// Package playlist turns a set of extracted tracks into a deterministic
// play order and tracks the playback cursor over it.
package playlist

import (
	"slices"
	"strings"

	"github.com/llehouerou/segue/internal/library"
)

// Tier is the ordering key chosen for a whole collection.
type Tier int

const (
	// TierTag orders by embedded track number.
	TierTag Tier = iota
	// TierFilename orders by the number leading the file name.
	TierFilename
	// TierCreated orders by file creation time.
	TierCreated
)

func (t Tier) String() string {
	switch t {
	case TierTag:
		return "tag"
	case TierFilename:
		return "filename"
	default:
		return "created"
	}
}

// OrderedTrack is a record with its final position in the play order.
type OrderedTrack struct {
	SequenceIndex int
	Record        library.TrackRecord
}

// ChooseTier returns the ordering key Resolve will use for records.
// A tier only applies when every record carries its key.
func ChooseTier(records []library.TrackRecord) Tier {
	if len(records) == 0 {
		return TierCreated
	}
	allTagged, allNumbered := true, true
	for _, r := range records {
		if r.TagNumber == nil {
			allTagged = false
		}
		if r.FilenameNumber == nil {
			allNumbered = false
		}
	}
	switch {
	case allTagged:
		return TierTag
	case allNumbered:
		return TierFilename
	default:
		return TierCreated
	}
}

// Resolve orders records by the first tier covering all of them and
// assigns contiguous sequence indices. Remaining ties fall back to the
// byte order of the path. records is not modified.
func Resolve(records []library.TrackRecord) []OrderedTrack {
	sorted := slices.Clone(records)
	tier := ChooseTier(sorted)

	slices.SortStableFunc(sorted, func(a, b library.TrackRecord) int {
		if c := compareTier(tier, a, b); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})

	out := make([]OrderedTrack, len(sorted))
	for i, r := range sorted {
		out[i] = OrderedTrack{SequenceIndex: i, Record: r}
	}
	return out
}

func compareTier(tier Tier, a, b library.TrackRecord) int {
	switch tier {
	case TierTag:
		return compareInt(*a.TagNumber, *b.TagNumber)
	case TierFilename:
		return compareInt(*a.FilenameNumber, *b.FilenameNumber)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
