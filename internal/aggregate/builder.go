package aggregate

import (
	"github.com/shopspring/decimal"

	"streamstats/internal/ranking"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

var (
	decMsPerMinute = decimal.NewFromInt(msPerMinute)
	decMsPerSecond = decimal.NewFromInt(msPerSecond)
)

// BuildStatistics computes the full statistics bundle for a set of events.
// Each step reads only the events and the results of earlier steps; the
// events themselves are never modified. It fails only with ErrEmptyDataset.
func BuildStatistics(events []PlayEvent) (*StatisticsBundle, error) {
	if len(events) == 0 {
		return nil, ErrEmptyDataset
	}

	// Step 1: song, artist and album totals
	lib := ComputeLibrary(events)

	// Step 2: timezone-adjusted calendar buckets
	cal := ComputeCalendar(events)

	// Step 3: global counters
	totals := ComputeTotals(events)

	// Step 4: skip statistics (uses the library for never-skipped)
	skips := ComputeSkips(events, lib)

	// Step 5: listen-through (uses the library for song lookup)
	listen := ComputeListenThrough(events, lib)

	b := &StatisticsBundle{
		TotalListeningMs: totals.TotalMs,
		TotalDays:        totals.TotalMs / msPerDay,
		TotalHours:       totals.TotalMs / msPerHour,
		TotalMinutes:     totals.TotalMs / msPerMinute,
		TotalEvents:      totals.Events,
		TotalSongs:       totals.Songs,
		UniqueSongs:      len(lib.Songs),
		UniqueArtists:    len(lib.Artists),
		UniqueCountries:  totals.Countries.Len(),
		Albums:           lib.Albums,
		Years:            cal.Years,
		Months:           cal.SortedMonths(),
		DayOfWeek:        cal.DayBuckets(),
		HourOfDay:        cal.HourBuckets(),
		MostSkippedSong:  skips.MostSkipped,
	}
	b.NeverSkippedSongs = skips.NeverSkipped

	// Step 6: rankings and extrema
	applyRankings(b, lib, cal, totals)

	// Step 7: percentages and averages
	applyRates(b, lib, cal, totals, listen)

	// Step 8: listening span
	if !totals.First.IsZero() {
		first, last := totals.First, totals.Last
		b.FirstListen = &first
		b.LastListen = &last
		b.DaysSinceStarted = totals.DaysActive()
	}

	return b, nil
}

func songMs(s SongAggregate) int64        { return s.TotalMsPlayed }
func songPlays(s SongAggregate) int64     { return s.PlayCount }
func artistMs(a ArtistAggregate) int64    { return a.TotalMsPlayed }
func artistSongs(a ArtistAggregate) int   { return a.UniqueSongs }
func albumMs(a AlbumAggregate) int64      { return a.TotalMsPlayed }
func dayMs(d DayBucket) int64             { return d.TotalMsPlayed }
func hourMs(h HourBucket) int64           { return h.TotalMsPlayed }
func monthTotalMs(m MonthAggregate) int64 { return m.TotalMsPlayed }
func varietySongs(v VarietyDay) int       { return v.UniqueSongs }
func hourPlayed(h HourBucket) bool        { return h.TotalMsPlayed > 0 }

func applyRankings(b *StatisticsBundle, lib *Library, cal *Calendar, totals *Totals) {
	b.TopSongs = ranking.TopN(lib.Songs, songMs, TopItems)
	b.TopArtists = ranking.TopN(lib.Artists, artistMs, TopItems)
	b.TopAlbums = ranking.TopN(lib.Albums, albumMs, TopItems)
	b.TopPlatforms = countEntries(totals.Platforms.Top(TopSources))
	b.TopCountries = countEntries(totals.Countries.Top(TopSources))

	if top, err := totals.Reasons.Max(); err == nil {
		b.TopReason = &CountEntry{Name: top.Key, Count: top.Count}
	}

	// Buckets always exist, so these only fail on an impossible empty slice.
	b.MostActiveDay, _ = ranking.ArgMax(b.DayOfWeek, dayMs)
	b.MostActiveHour, _ = ranking.ArgMax(b.HourOfDay, hourMs)

	if quiet, err := ranking.ArgMin(b.HourOfDay, hourMs, hourPlayed); err == nil {
		b.QuietestHour = &quiet
	}
	if busiest, err := ranking.ArgMax(cal.Months, monthTotalMs); err == nil {
		b.BusiestMonth = &busiest
	}
	if variety, err := ranking.ArgMax(cal.VarietyDays, varietySongs); err == nil {
		b.MostVarietyDay = &variety
	}

	if len(lib.Songs) > 0 {
		replayed, _ := ranking.ArgMax(lib.Songs, songPlays)
		longest, _ := ranking.ArgMax(lib.Songs, songMs)
		b.MostReplayed = &replayed
		b.LongestSong = &longest
	}
	if len(b.TopArtists) > 0 {
		most, _ := ranking.ArgMax(b.TopArtists, artistSongs)
		b.ArtistMostSongs = &most
	}

	for _, s := range lib.Songs {
		switch {
		case s.PlayCount == 1:
			b.OneShotSongs++
		case s.PlayCount > 100:
			b.SongsPlayedMoreThan100++
			b.SongsPlayedMoreThan50++
			b.SongsPlayedMoreThan10++
		case s.PlayCount > 50:
			b.SongsPlayedMoreThan50++
			b.SongsPlayedMoreThan10++
		case s.PlayCount > 10:
			b.SongsPlayedMoreThan10++
		}
	}
}

func applyRates(b *StatisticsBundle, lib *Library, cal *Calendar, totals *Totals, listen ListenThrough) {
	songs := totals.Songs

	b.SkippedCount = totals.Skipped
	b.SkippedPercentage = pct(totals.Skipped, songs)
	b.OfflineCount = totals.Offline
	b.OfflinePercentage = pct(totals.Offline, songs)
	b.ShuffleCount = totals.Shuffle
	b.ShufflePercentage = pct(totals.Shuffle, songs)
	b.IncognitoCount = totals.Incognito
	b.IncognitoPercentage = pct(totals.Incognito, songs)
	b.CompletedSongs = totals.Completed
	b.CompletedPercentage = pct(totals.Completed, songs)
	b.InstantSkips = totals.InstantSkips
	b.EpisodeCount = totals.Episodes
	b.EpisodePercentage = pct(totals.Episodes, totals.Events)

	avgMs := ranking.Ratio(totals.TotalMs, songs)
	b.AvgMinPerPlay = avgMs.Div(decMsPerMinute).Floor().IntPart()
	b.AvgSecPerPlay = avgMs.Mod(decMsPerMinute).Div(decMsPerSecond).Floor().IntPart()

	b.AvgPlaysPerSong = ranking.Ratio(songs, int64(len(lib.Songs))).StringFixed(2)

	var monthlyPlays int64
	for _, m := range cal.Months {
		monthlyPlays += m.PlayCount
	}
	b.AvgPlaysPerMonth = ranking.Ratio(monthlyPlays, int64(len(cal.Months))).StringFixed(0)

	b.AvgListenThroughMinutes = ranking.Ratio(listen.TotalMs, listen.Plays).Div(decMsPerMinute).StringFixed(1)

	b.EarlyMorningMs = cal.HourRangeMs(EarlyMorningStart, EarlyMorningEnd)
	b.LateNightMs = cal.HourRangeMs(LateNightStart, LateNightEnd)

	for day, ms := range cal.Days {
		if day == 0 || day == 6 {
			b.WeekendMs += ms
		} else {
			b.WeekdayMs += ms
		}
	}
	b.WeekdayPercentage = pct(b.WeekdayMs, totals.TotalMs)
}

func pct(numerator, denominator int64) string {
	return ranking.Percentage(numerator, denominator).StringFixed(1)
}

func countEntries(entries []ranking.Entry[string]) []CountEntry {
	out := make([]CountEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, CountEntry{Name: e.Key, Count: e.Count})
	}
	return out
}
