package aggregate

import (
	"time"

	"streamstats/internal/ranking"
)

// Totals holds the counters taken over every event, regardless of whether it
// identifies a song.
type Totals struct {
	Events       int64
	TotalMs      int64
	Songs        int64 // events with a track name
	Skipped      int64
	Offline      int64
	Shuffle      int64
	Incognito    int64
	Episodes     int64
	InstantSkips int64 // ms_played == 0
	Completed    int64 // not skipped and ms_played > 0

	Platforms *ranking.Tally[string]
	Countries *ranking.Tally[string]
	Reasons   *ranking.Tally[string]

	// First and Last are the earliest and latest raw timestamps; both are zero
	// when no event carries one.
	First time.Time
	Last  time.Time
}

// ComputeTotals counts flags, sources and the listening span over all events.
func ComputeTotals(events []PlayEvent) *Totals {
	t := &Totals{
		Platforms: ranking.NewTally[string](),
		Countries: ranking.NewTally[string](),
		Reasons:   ranking.NewTally[string](),
	}

	for _, e := range events {
		t.Events++
		t.TotalMs += e.MsPlayed

		if e.TrackName != "" {
			t.Songs++
		}
		if e.Skipped {
			t.Skipped++
		}
		if e.Offline {
			t.Offline++
		}
		if e.Shuffle {
			t.Shuffle++
		}
		if e.Incognito {
			t.Incognito++
		}
		if e.IsEpisode() {
			t.Episodes++
		}
		if e.MsPlayed == 0 {
			t.InstantSkips++
		}
		if !e.Skipped && e.MsPlayed > 0 {
			t.Completed++
		}

		if e.Platform != "" {
			t.Platforms.Add(e.Platform, 1)
		}
		if e.CountryCode != "" {
			t.Countries.Add(e.CountryCode, 1)
		}
		if e.ReasonStart != "" {
			t.Reasons.Add(e.ReasonStart, 1)
		}

		if e.HasTimestamp() {
			if t.First.IsZero() || e.Timestamp.Before(t.First) {
				t.First = e.Timestamp
			}
			if t.Last.IsZero() || e.Timestamp.After(t.Last) {
				t.Last = e.Timestamp
			}
		}
	}

	return t
}

// DaysActive is the number of whole days between the first and last listen.
func (t *Totals) DaysActive() int64 {
	if t.First.IsZero() || t.Last.IsZero() {
		return 0
	}
	return int64(t.Last.Sub(t.First) / (24 * time.Hour))
}
