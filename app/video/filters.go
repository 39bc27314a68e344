package video

import (
	"slices"
	"time"
)

// FilterByWindow keeps videos published at or after cutoff.
func FilterByWindow(videos []Video, cutoff time.Time) []Video {
	kept := make([]Video, 0, len(videos))
	for _, v := range videos {
		if !v.Published.Before(cutoff) {
			kept = append(kept, v)
		}
	}
	return kept
}

func FilterUnwatched(videos []Video, watched WatchedSet) []Video {
	kept := make([]Video, 0, len(videos))
	for _, v := range videos {
		if !watched.Has(v.ID) {
			kept = append(kept, v)
		}
	}
	return kept
}

// SortNewestFirst sorts in place by publish time descending. Equal
// timestamps keep their relative order.
func SortNewestFirst(videos []Video) {
	slices.SortStableFunc(videos, func(a, b Video) int {
		return b.Published.Compare(a.Published)
	})
}
