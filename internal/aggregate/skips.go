package aggregate

import (
	"streamstats/internal/ranking"
)

// SkipStats describes which songs were skipped.
type SkipStats struct {
	// MostSkipped is nil when no event with a track name was skipped.
	MostSkipped  *SkippedSong
	NeverSkipped int
}

// ComputeSkips counts skips per song and the library songs never skipped.
// A skipped event needs a track name to count; its artist may be missing.
func ComputeSkips(events []PlayEvent, lib *Library) *SkipStats {
	skips := ranking.NewTally[SongKey]()
	for _, e := range events {
		if e.Skipped && e.TrackName != "" {
			skips.Add(e.Song(), 1)
		}
	}

	stats := &SkipStats{}
	if top, err := skips.Max(); err == nil {
		stats.MostSkipped = &SkippedSong{
			Track:  top.Key.Track,
			Artist: top.Key.Artist,
			Skips:  top.Count,
		}
	}

	for _, s := range lib.Songs {
		if _, skipped := skips.Get(SongKey{Track: s.Track, Artist: s.Artist}); !skipped {
			stats.NeverSkipped++
		}
	}
	return stats
}

// ListenThrough is the listening time of song plays that actually played.
type ListenThrough struct {
	TotalMs int64
	Plays   int64
}

// ComputeListenThrough sums ms over events whose song is in the library and
// that played for more than zero ms.
func ComputeListenThrough(events []PlayEvent, lib *Library) ListenThrough {
	var lt ListenThrough
	for _, e := range events {
		if !e.HasSong() || e.MsPlayed <= 0 || !lib.HasSong(e.Song()) {
			continue
		}
		lt.TotalMs += e.MsPlayed
		lt.Plays++
	}
	return lt
}
