package aggregate

import (
	"math"
	"strings"
	"time"
)

// Record is one listening record as it appears in a streaming-history export.
// Every field is optional; nil means the field was absent or null.
type Record struct {
	Ts          *string  `json:"ts"`
	MsPlayed    *float64 `json:"ms_played"`
	TrackName   *string  `json:"master_metadata_track_name"`
	ArtistName  *string  `json:"master_metadata_album_artist_name"`
	AlbumName   *string  `json:"master_metadata_album_album_name"`
	ConnCountry *string  `json:"conn_country"`
	Platform    *string  `json:"platform"`
	ReasonStart *string  `json:"reason_start"`
	Skipped     *bool    `json:"skipped"`
	Offline     *bool    `json:"offline"`
	Shuffle     *bool    `json:"shuffle"`
	Incognito   *bool    `json:"incognito_mode"`
	EpisodeName *string  `json:"episode_name"`
}

// PlayEvent is a normalized listening record. Absent strings are empty, absent
// booleans are false, an absent duration is zero and an absent or unparseable
// timestamp is the zero time. Timestamps are RFC 3339; "2006-01-02 15:04:05"
// without a zone is read as UTC. Events are never modified after normalization.
type PlayEvent struct {
	Timestamp   time.Time
	TrackName   string
	ArtistName  string
	AlbumName   string
	MsPlayed    int64
	CountryCode string
	Skipped     bool
	Offline     bool
	Shuffle     bool
	Incognito   bool
	Platform    string
	ReasonStart string
	EpisodeName string
}

// HasTimestamp reports whether the event can be placed on a calendar.
func (e PlayEvent) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}

// HasSong reports whether the event identifies a song (track and artist present).
func (e PlayEvent) HasSong() bool {
	return e.TrackName != "" && e.ArtistName != ""
}

// IsEpisode reports whether the event is podcast content.
func (e PlayEvent) IsEpisode() bool {
	return e.EpisodeName != ""
}

// Song returns the song identity of the event.
func (e PlayEvent) Song() SongKey {
	return SongKey{Track: e.TrackName, Artist: e.ArtistName}
}

// Normalize applies the defaulting rules to a raw record.
func Normalize(r Record) PlayEvent {
	return PlayEvent{
		Timestamp:   parseTimestamp(r.Ts),
		TrackName:   str(r.TrackName),
		ArtistName:  str(r.ArtistName),
		AlbumName:   str(r.AlbumName),
		MsPlayed:    millis(r.MsPlayed),
		CountryCode: strings.TrimSpace(str(r.ConnCountry)),
		Skipped:     flag(r.Skipped),
		Offline:     flag(r.Offline),
		Shuffle:     flag(r.Shuffle),
		Incognito:   flag(r.Incognito),
		Platform:    str(r.Platform),
		ReasonStart: str(r.ReasonStart),
		EpisodeName: str(r.EpisodeName),
	}
}

// NormalizeAll normalizes records in order.
func NormalizeAll(records []Record) []PlayEvent {
	events := make([]PlayEvent, 0, len(records))
	for _, r := range records {
		events = append(events, Normalize(r))
	}
	return events
}

func parseTimestamp(ts *string) time.Time {
	if ts == nil || *ts == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, *ts)
	if err != nil {
		parsed, err = time.ParseInLocation(time.DateTime, *ts, time.UTC)
		if err != nil {
			return time.Time{}
		}
	}
	return parsed.UTC()
}

func millis(ms *float64) int64 {
	if ms == nil || math.IsNaN(*ms) || *ms <= 0 {
		return 0
	}
	if *ms >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(*ms)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func flag(b *bool) bool {
	return b != nil && *b
}
