package aggregate

import (
	"errors"
	"time"
)

// ErrEmptyDataset is returned when there are no events to aggregate.
var ErrEmptyDataset = errors.New("no data found")

// Ranking sizes used by the statistics bundle.
const (
	TopItems   = 10
	TopSources = 3
)

// Hour ranges for the time-of-day metrics.
const (
	EarlyMorningStart = 4 // inclusive
	EarlyMorningEnd   = 8 // exclusive
	LateNightStart    = 22
	LateNightEnd      = 4 // exclusive, wraps past midnight
)

// DayNames indexes weekday names by DayOfWeek (0 = Sunday).
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// SongKey identifies a song by track and artist.
type SongKey struct {
	Track  string
	Artist string
}

// String renders the key as "track - artist".
func (k SongKey) String() string {
	return k.Track + " - " + k.Artist
}

// AlbumKey identifies an album by album name and artist.
type AlbumKey struct {
	Album  string
	Artist string
}

// SongAggregate is the running total for one song.
type SongAggregate struct {
	Track         string `json:"track"`
	Artist        string `json:"artist"`
	TotalMsPlayed int64  `json:"totalMs"`
	PlayCount     int64  `json:"playCount"`
}

// ArtistAggregate is the running total for one artist.
type ArtistAggregate struct {
	Name          string `json:"name"`
	TotalMsPlayed int64  `json:"totalMs"`
	PlayCount     int64  `json:"playCount"`
	UniqueSongs   int    `json:"uniqueSongs"`
}

// AlbumAggregate is the running total for one album.
type AlbumAggregate struct {
	Name          string `json:"name"`
	Artist        string `json:"artist"`
	TotalMsPlayed int64  `json:"totalMs"`
	PlayCount     int64  `json:"playCount"`
	UniqueSongs   int    `json:"uniqueSongs"`
}

// YearAggregate summarizes one local calendar year.
type YearAggregate struct {
	Year          int   `json:"year"`
	TotalMsPlayed int64 `json:"totalMs"`
	PlayCount     int64 `json:"playCount"`
	UniqueSongs   int   `json:"uniqueSongs"`
	UniqueArtists int   `json:"uniqueArtists"`
}

// MonthAggregate summarizes one local calendar month (YYYY-MM).
type MonthAggregate struct {
	Month         string `json:"month"`
	PlayCount     int64  `json:"playCount"`
	TotalMsPlayed int64  `json:"totalMs"`
}

// DayBucket is the listening time on one weekday.
type DayBucket struct {
	Day           int    `json:"day"`
	Name          string `json:"name"`
	TotalMsPlayed int64  `json:"totalMs"`
}

// HourBucket is the listening time in one hour of the day.
type HourBucket struct {
	Hour          int   `json:"hour"`
	TotalMsPlayed int64 `json:"totalMs"`
}

// CountEntry is a named event count (platform, country, start reason).
type CountEntry struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// SkippedSong is the song skipped most often.
type SkippedSong struct {
	Track  string `json:"track"`
	Artist string `json:"artist"`
	Skips  int64  `json:"skips"`
}

// VarietyDay is the local day with the most distinct tracks.
type VarietyDay struct {
	Date        string `json:"date"`
	UniqueSongs int    `json:"uniqueSongs"`
}

// StatisticsBundle is the complete result of one aggregation run. It is built
// once by BuildStatistics and not modified afterwards.
//
// Song, artist and album totals only cover events with a track and an artist,
// so their sums can be lower than TotalListeningMs, which counts every event.
type StatisticsBundle struct {
	TotalListeningMs int64 `json:"totalListeningMs"`
	TotalDays        int64 `json:"totalDays"`
	TotalHours       int64 `json:"totalHours"`
	TotalMinutes     int64 `json:"totalMinutes"`
	TotalEvents      int64 `json:"totalEvents"`
	TotalSongs       int64 `json:"totalSongs"`
	UniqueSongs      int   `json:"uniqueSongs"`
	UniqueArtists    int   `json:"uniqueArtists"`
	UniqueCountries  int   `json:"uniqueCountries"`

	TopSongs   []SongAggregate   `json:"topSongs"`
	TopArtists []ArtistAggregate `json:"topArtists"`
	TopAlbums  []AlbumAggregate  `json:"topAlbums"`
	Albums     []AlbumAggregate  `json:"albums"`

	Years     []YearAggregate  `json:"years"`
	Months    []MonthAggregate `json:"months"`
	DayOfWeek []DayBucket      `json:"dayOfWeek"`
	HourOfDay []HourBucket     `json:"hourOfDay"`

	MostActiveDay  DayBucket       `json:"mostActiveDay"`
	MostActiveHour HourBucket      `json:"mostActiveHour"`
	QuietestHour   *HourBucket     `json:"quietestHour"`
	BusiestMonth   *MonthAggregate `json:"busiestMonth"`
	MostVarietyDay *VarietyDay     `json:"mostVarietyDay"`

	SkippedCount        int64  `json:"skippedCount"`
	SkippedPercentage   string `json:"skippedPercentage"`
	OfflineCount        int64  `json:"offlineCount"`
	OfflinePercentage   string `json:"offlinePercentage"`
	ShuffleCount        int64  `json:"shuffleCount"`
	ShufflePercentage   string `json:"shufflePercentage"`
	IncognitoCount      int64  `json:"incognitoCount"`
	IncognitoPercentage string `json:"incognitoPercentage"`
	CompletedSongs      int64  `json:"completedSongs"`
	CompletedPercentage string `json:"completedPercentage"`
	InstantSkips        int64  `json:"instantSkips"`
	EpisodeCount        int64  `json:"episodeCount"`
	EpisodePercentage   string `json:"episodePercentage"`

	AvgMinPerPlay           int64  `json:"avgMinPerPlay"`
	AvgSecPerPlay           int64  `json:"avgSecPerPlay"`
	AvgPlaysPerSong         string `json:"avgPlaysPerSong"`
	AvgPlaysPerMonth        string `json:"avgPlaysPerMonth"`
	AvgListenThroughMinutes string `json:"avgListenThroughMinutes"`

	TopPlatforms []CountEntry `json:"topPlatforms"`
	TopCountries []CountEntry `json:"topCountries"`
	TopReason    *CountEntry  `json:"topReason"`

	MostReplayed    *SongAggregate   `json:"mostReplayed"`
	LongestSong     *SongAggregate   `json:"longestSong"`
	ArtistMostSongs *ArtistAggregate `json:"artistMostSongs"`
	MostSkippedSong *SkippedSong     `json:"mostSkippedSong"`

	OneShotSongs           int `json:"oneShotSongs"`
	SongsPlayedMoreThan10  int `json:"songsPlayedMoreThan10"`
	SongsPlayedMoreThan50  int `json:"songsPlayedMoreThan50"`
	SongsPlayedMoreThan100 int `json:"songsPlayedMoreThan100"`
	NeverSkippedSongs      int `json:"neverSkippedSongs"`

	FirstListen      *time.Time `json:"firstListen"`
	LastListen       *time.Time `json:"lastListen"`
	DaysSinceStarted int64      `json:"daysSinceStarted"`

	EarlyMorningMs    int64  `json:"earlyMorningMs"`
	LateNightMs       int64  `json:"lateNightMs"`
	WeekdayMs         int64  `json:"weekdayMs"`
	WeekendMs         int64  `json:"weekendMs"`
	WeekdayPercentage string `json:"weekdayPercentage"`
}
