package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func song(track, artist string, ms int64) PlayEvent {
	return PlayEvent{TrackName: track, ArtistName: artist, MsPlayed: ms}
}

// listeningFixture covers songs, a podcast and a track without artist, all in UTC.
func listeningFixture(t *testing.T) []PlayEvent {
	return []PlayEvent{
		{Timestamp: at(t, "2024-03-04T05:00:00Z"), TrackName: "T1", ArtistName: "A1", AlbumName: "Al1",
			MsPlayed: 180000, Platform: "ios", ReasonStart: "trackdone"},
		{Timestamp: at(t, "2024-03-04T23:30:00Z"), TrackName: "T1", ArtistName: "A1", AlbumName: "Al1",
			MsPlayed: 120000, Skipped: true, Platform: "ios", ReasonStart: "fwdbtn"},
		{Timestamp: at(t, "2024-03-09T12:00:00Z"), TrackName: "T2", ArtistName: "A1",
			MsPlayed: 60000, Shuffle: true, Platform: "android", ReasonStart: "trackdone"},
		{Timestamp: at(t, "2024-04-01T02:00:00Z"), TrackName: "T3", ArtistName: "A2", AlbumName: "Al2",
			MsPlayed: 0, Skipped: true, Offline: true},
		{EpisodeName: "Pod", MsPlayed: 600000, Platform: "web", Incognito: true},
		{Timestamp: at(t, "2024-04-01T03:00:00Z"), TrackName: "T4", MsPlayed: 30000},
	}
}

func TestBuildStatisticsEmpty(t *testing.T) {
	b, err := BuildStatistics(nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)
	assert.Nil(t, b)
}

func TestRepeatedSongAccumulates(t *testing.T) {
	b, err := BuildStatistics([]PlayEvent{song("A", "X", 1000), song("A", "X", 2000)})
	require.NoError(t, err)

	require.Len(t, b.TopSongs, 1)
	assert.Equal(t, SongAggregate{Track: "A", Artist: "X", TotalMsPlayed: 3000, PlayCount: 2}, b.TopSongs[0])
	assert.Equal(t, 1, b.UniqueSongs)
	assert.Equal(t, "2.00", b.AvgPlaysPerSong)
}

func TestNoTimestamps(t *testing.T) {
	b, err := BuildStatistics([]PlayEvent{song("A", "X", 1000), song("B", "Y", 5000)})
	require.NoError(t, err)

	assert.Equal(t, DayBucket{Day: 0, Name: "Sunday"}, b.MostActiveDay)
	assert.Equal(t, HourBucket{Hour: 0}, b.MostActiveHour)
	assert.Empty(t, b.Years)
	assert.Empty(t, b.Months)
	assert.Nil(t, b.QuietestHour)
	assert.Nil(t, b.BusiestMonth)
	assert.Nil(t, b.MostVarietyDay)
	assert.Nil(t, b.FirstListen)
	assert.Nil(t, b.LastListen)
	assert.Zero(t, b.DaysSinceStarted)
	assert.Equal(t, "0", b.AvgPlaysPerMonth)
	assert.Equal(t, "0.0", b.WeekdayPercentage)
	for _, d := range b.DayOfWeek {
		assert.Zero(t, d.TotalMsPlayed)
	}
}

func TestSingleInstantSkipInUS(t *testing.T) {
	events := []PlayEvent{{
		Timestamp:   at(t, "2023-01-01T00:00:00Z"),
		TrackName:   "B",
		ArtistName:  "Y",
		MsPlayed:    0,
		Skipped:     true,
		CountryCode: "US",
	}}

	b, err := BuildStatistics(events)
	require.NoError(t, err)

	assert.Equal(t, int64(1), b.InstantSkips)
	assert.Equal(t, "100.0", b.SkippedPercentage)
	assert.Equal(t, "0.0", b.CompletedPercentage)

	// 2023-01-01T00:00Z is 19:00 on Saturday 2022-12-31 in New York.
	require.Len(t, b.Years, 1)
	assert.Equal(t, 2022, b.Years[0].Year)
	require.NotNil(t, b.BusiestMonth)
	assert.Equal(t, "2022-12", b.BusiestMonth.Month)
	require.NotNil(t, b.MostVarietyDay)
	assert.Equal(t, VarietyDay{Date: "2022-12-31", UniqueSongs: 1}, *b.MostVarietyDay)

	require.NotNil(t, b.MostSkippedSong)
	assert.Equal(t, SkippedSong{Track: "B", Artist: "Y", Skips: 1}, *b.MostSkippedSong)
	assert.Zero(t, b.NeverSkippedSongs)
	assert.Equal(t, 1, b.UniqueCountries)
}

func TestLocalHourFollowsCountry(t *testing.T) {
	events := []PlayEvent{{
		Timestamp:   at(t, "2023-01-01T00:00:00Z"),
		TrackName:   "B",
		ArtistName:  "Y",
		MsPlayed:    5000,
		CountryCode: "US",
	}}

	b, err := BuildStatistics(events)
	require.NoError(t, err)

	assert.Equal(t, HourBucket{Hour: 19, TotalMsPlayed: 5000}, b.MostActiveHour)
	assert.Equal(t, 6, b.MostActiveDay.Day)
	assert.Equal(t, "Saturday", b.MostActiveDay.Name)
}

func TestEpisodesExcludedFromSongs(t *testing.T) {
	events := []PlayEvent{
		{EpisodeName: "Pod 1", MsPlayed: 40000},
		{EpisodeName: "Pod 2", MsPlayed: 20000},
		song("A", "X", 1000),
	}

	b, err := BuildStatistics(events)
	require.NoError(t, err)

	assert.Equal(t, 1, b.UniqueSongs)
	require.Len(t, b.TopSongs, 1)
	assert.Equal(t, "A", b.TopSongs[0].Track)
	assert.Equal(t, int64(2), b.EpisodeCount)
	assert.Equal(t, "66.7", b.EpisodePercentage)
	assert.Equal(t, int64(61000), b.TotalListeningMs)

	// Song totals leave out podcast time, so they sum to less than the grand total.
	var songMsTotal int64
	for _, s := range b.TopSongs {
		songMsTotal += s.TotalMsPlayed
	}
	assert.Less(t, songMsTotal, b.TotalListeningMs)
}

func TestFixtureTotals(t *testing.T) {
	b, err := BuildStatistics(listeningFixture(t))
	require.NoError(t, err)

	assert.Equal(t, int64(6), b.TotalEvents)
	assert.Equal(t, int64(990000), b.TotalListeningMs)
	assert.Equal(t, int64(16), b.TotalMinutes)
	assert.Zero(t, b.TotalHours)
	assert.Zero(t, b.TotalDays)
	assert.Equal(t, int64(5), b.TotalSongs)
	assert.Equal(t, 3, b.UniqueSongs)
	assert.Equal(t, 2, b.UniqueArtists)

	assert.Equal(t, int64(2), b.SkippedCount)
	assert.Equal(t, "40.0", b.SkippedPercentage)
	assert.Equal(t, "20.0", b.OfflinePercentage)
	assert.Equal(t, "20.0", b.ShufflePercentage)
	assert.Equal(t, "20.0", b.IncognitoPercentage)
	assert.Equal(t, int64(4), b.CompletedSongs)
	assert.Equal(t, "80.0", b.CompletedPercentage)
	assert.Equal(t, int64(1), b.InstantSkips)
	assert.Equal(t, "16.7", b.EpisodePercentage)

	assert.Equal(t, int64(3), b.AvgMinPerPlay)
	assert.Equal(t, int64(18), b.AvgSecPerPlay)
	assert.Equal(t, "1.67", b.AvgPlaysPerSong)
	assert.Equal(t, "3", b.AvgPlaysPerMonth)
	assert.Equal(t, "2.0", b.AvgListenThroughMinutes)
}

func TestFixtureLibrary(t *testing.T) {
	b, err := BuildStatistics(listeningFixture(t))
	require.NoError(t, err)

	assert.Equal(t, []SongAggregate{
		{Track: "T1", Artist: "A1", TotalMsPlayed: 300000, PlayCount: 2},
		{Track: "T2", Artist: "A1", TotalMsPlayed: 60000, PlayCount: 1},
		{Track: "T3", Artist: "A2", TotalMsPlayed: 0, PlayCount: 1},
	}, b.TopSongs)
	assert.Equal(t, []ArtistAggregate{
		{Name: "A1", TotalMsPlayed: 360000, PlayCount: 3, UniqueSongs: 2},
		{Name: "A2", TotalMsPlayed: 0, PlayCount: 1, UniqueSongs: 1},
	}, b.TopArtists)
	assert.Equal(t, []AlbumAggregate{
		{Name: "Al1", Artist: "A1", TotalMsPlayed: 300000, PlayCount: 2, UniqueSongs: 1},
		{Name: "Al2", Artist: "A2", TotalMsPlayed: 0, PlayCount: 1, UniqueSongs: 1},
	}, b.TopAlbums)

	require.NotNil(t, b.MostReplayed)
	assert.Equal(t, "T1", b.MostReplayed.Track)
	require.NotNil(t, b.LongestSong)
	assert.Equal(t, "T1", b.LongestSong.Track)
	require.NotNil(t, b.ArtistMostSongs)
	assert.Equal(t, "A1", b.ArtistMostSongs.Name)
	assert.Equal(t, 2, b.OneShotSongs)
	assert.Zero(t, b.SongsPlayedMoreThan10)

	require.NotNil(t, b.MostSkippedSong)
	assert.Equal(t, SkippedSong{Track: "T1", Artist: "A1", Skips: 1}, *b.MostSkippedSong)
	assert.Equal(t, 1, b.NeverSkippedSongs)
}

func TestFixtureCalendar(t *testing.T) {
	b, err := BuildStatistics(listeningFixture(t))
	require.NoError(t, err)

	assert.Equal(t, DayBucket{Day: 1, Name: "Monday", TotalMsPlayed: 330000}, b.MostActiveDay)
	assert.Equal(t, HourBucket{Hour: 5, TotalMsPlayed: 180000}, b.MostActiveHour)
	require.NotNil(t, b.QuietestHour)
	assert.Equal(t, HourBucket{Hour: 3, TotalMsPlayed: 30000}, *b.QuietestHour)

	assert.Equal(t, []YearAggregate{
		{Year: 2024, TotalMsPlayed: 390000, PlayCount: 5, UniqueSongs: 4, UniqueArtists: 2},
	}, b.Years)
	assert.Equal(t, []MonthAggregate{
		{Month: "2024-03", PlayCount: 3, TotalMsPlayed: 360000},
		{Month: "2024-04", PlayCount: 2, TotalMsPlayed: 30000},
	}, b.Months)
	require.NotNil(t, b.BusiestMonth)
	assert.Equal(t, "2024-03", b.BusiestMonth.Month)
	require.NotNil(t, b.MostVarietyDay)
	assert.Equal(t, VarietyDay{Date: "2024-04-01", UniqueSongs: 2}, *b.MostVarietyDay)

	assert.Equal(t, int64(180000), b.EarlyMorningMs)
	assert.Equal(t, int64(150000), b.LateNightMs)
	assert.Equal(t, int64(330000), b.WeekdayMs)
	assert.Equal(t, int64(60000), b.WeekendMs)
	assert.Equal(t, "33.3", b.WeekdayPercentage)

	require.NotNil(t, b.FirstListen)
	require.NotNil(t, b.LastListen)
	assert.Equal(t, at(t, "2024-03-04T05:00:00Z"), *b.FirstListen)
	assert.Equal(t, at(t, "2024-04-01T03:00:00Z"), *b.LastListen)
	assert.Equal(t, int64(27), b.DaysSinceStarted)
}

func TestFixtureSources(t *testing.T) {
	b, err := BuildStatistics(listeningFixture(t))
	require.NoError(t, err)

	assert.Equal(t, []CountEntry{{"ios", 2}, {"android", 1}, {"web", 1}}, b.TopPlatforms)
	assert.Empty(t, b.TopCountries)
	require.NotNil(t, b.TopReason)
	assert.Equal(t, CountEntry{Name: "trackdone", Count: 2}, *b.TopReason)
}

func TestPlayCountNeverExceedsTotalSongs(t *testing.T) {
	tests := []struct {
		name   string
		events []PlayEvent
		equal  bool
	}{
		{"all songs", []PlayEvent{song("a", "x", 1), song("b", "y", 2), song("a", "x", 3)}, true},
		{"track without artist", []PlayEvent{song("a", "x", 1), song("b", "", 2)}, false},
		{"podcast only", []PlayEvent{{EpisodeName: "p"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := BuildStatistics(tt.events)
			require.NoError(t, err)

			var plays int64
			for _, s := range b.TopSongs {
				plays += s.PlayCount
			}
			assert.LessOrEqual(t, plays, b.TotalSongs)
			assert.Equal(t, tt.equal, plays == b.TotalSongs)
		})
	}
}

func TestTopRankingsStableAndTruncated(t *testing.T) {
	var events []PlayEvent
	for i := 0; i < 12; i++ {
		events = append(events, song(fmt.Sprintf("s%02d", i), fmt.Sprintf("a%02d", i), 1000))
	}
	events = append(events, song("s11", "a11", 1))

	b, err := BuildStatistics(events)
	require.NoError(t, err)

	require.Len(t, b.TopSongs, TopItems)
	assert.Equal(t, "s11", b.TopSongs[0].Track)
	for i := 1; i < TopItems; i++ {
		assert.Equal(t, fmt.Sprintf("s%02d", i-1), b.TopSongs[i].Track)
	}
	require.Len(t, b.TopArtists, TopItems)
	assert.Equal(t, "a11", b.TopArtists[0].Name)
}

func TestSourceRankingTieBreak(t *testing.T) {
	events := []PlayEvent{
		{Platform: "web", CountryCode: "SE"},
		{Platform: "ios", CountryCode: "DE"},
		{Platform: "tv", CountryCode: "DE"},
		{Platform: "car", CountryCode: "SE"},
		{Platform: "car", CountryCode: "NO"},
		{Platform: "ios", CountryCode: "FI"},
	}

	b, err := BuildStatistics(events)
	require.NoError(t, err)

	assert.Equal(t, []CountEntry{{"ios", 2}, {"car", 2}, {"web", 1}}, b.TopPlatforms)
	assert.Equal(t, []CountEntry{{"SE", 2}, {"DE", 2}, {"NO", 1}}, b.TopCountries)
	assert.Equal(t, 4, b.UniqueCountries)
	assert.Nil(t, b.TopReason)
}

func TestActiveBucketTiesPickLowestIndex(t *testing.T) {
	events := []PlayEvent{
		// Tuesday 10:00 and Thursday 08:00 with equal time.
		{Timestamp: at(t, "2024-01-02T10:00:00Z"), MsPlayed: 500},
		{Timestamp: at(t, "2024-01-04T08:00:00Z"), MsPlayed: 500},
	}

	b, err := BuildStatistics(events)
	require.NoError(t, err)

	assert.Equal(t, 2, b.MostActiveDay.Day)
	assert.Equal(t, 8, b.MostActiveHour.Hour)
	require.NotNil(t, b.QuietestHour)
	assert.Equal(t, 8, b.QuietestHour.Hour)
}

func TestMostSkippedTieKeepsFirst(t *testing.T) {
	events := []PlayEvent{
		{TrackName: "late", ArtistName: "x", Skipped: true},
		{TrackName: "early", ArtistName: "x"},
		{TrackName: "early", ArtistName: "x", Skipped: true},
		{TrackName: "late", ArtistName: "x", Skipped: true},
		{TrackName: "early", ArtistName: "x", Skipped: true},
	}

	b, err := BuildStatistics(events)
	require.NoError(t, err)

	require.NotNil(t, b.MostSkippedSong)
	assert.Equal(t, "late", b.MostSkippedSong.Track)
	assert.Equal(t, int64(2), b.MostSkippedSong.Skips)
	assert.Zero(t, b.NeverSkippedSongs)
}

func TestNoSkipsGivesNilMostSkipped(t *testing.T) {
	b, err := BuildStatistics([]PlayEvent{song("a", "x", 10), song("b", "y", 10)})
	require.NoError(t, err)

	assert.Nil(t, b.MostSkippedSong)
	assert.Equal(t, 2, b.NeverSkippedSongs)
}

func TestNoSongsLeavesSongExtremaNil(t *testing.T) {
	b, err := BuildStatistics([]PlayEvent{{EpisodeName: "p", MsPlayed: 100}})
	require.NoError(t, err)

	assert.Zero(t, b.UniqueSongs)
	assert.Nil(t, b.MostReplayed)
	assert.Nil(t, b.LongestSong)
	assert.Nil(t, b.ArtistMostSongs)
	assert.Empty(t, b.TopSongs)
	assert.Equal(t, "0.0", b.SkippedPercentage)
	assert.Equal(t, "0.00", b.AvgPlaysPerSong)
	assert.Equal(t, "0.0", b.AvgListenThroughMinutes)
	assert.Zero(t, b.AvgMinPerPlay)
}

func TestPlayThresholds(t *testing.T) {
	var events []PlayEvent
	add := func(track string, n int) {
		for i := 0; i < n; i++ {
			events = append(events, song(track, "x", 1))
		}
	}
	add("once", 1)
	add("eleven", 11)
	add("fiftyone", 51)
	add("hundredone", 101)

	b, err := BuildStatistics(events)
	require.NoError(t, err)

	assert.Equal(t, 1, b.OneShotSongs)
	assert.Equal(t, 3, b.SongsPlayedMoreThan10)
	assert.Equal(t, 2, b.SongsPlayedMoreThan50)
	assert.Equal(t, 1, b.SongsPlayedMoreThan100)
	require.NotNil(t, b.MostReplayed)
	assert.Equal(t, "hundredone", b.MostReplayed.Track)
}

func TestBuildStatisticsIsDeterministic(t *testing.T) {
	events := listeningFixture(t)
	events = append(events,
		PlayEvent{Timestamp: at(t, "2023-11-05T06:30:00Z"), TrackName: "T9", ArtistName: "A9", MsPlayed: 5, CountryCode: "US"},
		PlayEvent{Timestamp: at(t, "2022-02-01T06:30:00Z"), TrackName: "T8", ArtistName: "A8", MsPlayed: 7, CountryCode: "AU"},
	)
	snapshot := make([]PlayEvent, len(events))
	copy(snapshot, events)

	first, err := BuildStatistics(events)
	require.NoError(t, err)
	second, err := BuildStatistics(events)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, events, "events must not be modified")
	assert.Equal(t, []int{2022, 2023, 2024}, []int{first.Years[0].Year, first.Years[1].Year, first.Years[2].Year})
}
