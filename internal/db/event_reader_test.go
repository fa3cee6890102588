package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamstats/internal/aggregate"
)

func TestRowRecordRoundTripsThroughNormalize(t *testing.T) {
	ts := time.Date(2023, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600))
	ms := int64(215000)
	track, artist, country := "Song", "Band", "DE"
	skipped := true

	row := eventRow{Ts: &ts, MsPlayed: &ms, TrackName: &track, ArtistName: &artist,
		ConnCountry: &country, Skipped: &skipped}

	e := aggregate.Normalize(row.record())

	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), e.Timestamp)
	assert.Equal(t, ms, e.MsPlayed)
	assert.Equal(t, aggregate.SongKey{Track: "Song", Artist: "Band"}, e.Song())
	assert.Equal(t, "DE", e.CountryCode)
	assert.True(t, e.Skipped)
	assert.False(t, e.Offline)
}

func TestRowRecordNulls(t *testing.T) {
	rec := eventRow{}.record()

	assert.Nil(t, rec.Ts)
	assert.Nil(t, rec.MsPlayed)

	e := aggregate.Normalize(rec)
	require.False(t, e.HasTimestamp())
	assert.Zero(t, e.MsPlayed)
}
