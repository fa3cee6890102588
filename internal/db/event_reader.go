package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"streamstats/internal/aggregate"
)

// EventReader provides read-only access to imported play events.
type EventReader struct {
	pool *pgxpool.Pool
}

// NewEventReader creates a new play event reader.
func NewEventReader(pool *pgxpool.Pool) *EventReader {
	return &EventReader{pool: pool}
}

// eventRow mirrors one row of the play_events table.
type eventRow struct {
	Ts          *time.Time
	MsPlayed    *int64
	TrackName   *string
	ArtistName  *string
	AlbumName   *string
	ConnCountry *string
	Platform    *string
	ReasonStart *string
	Skipped     *bool
	Offline     *bool
	Shuffle     *bool
	Incognito   *bool
	EpisodeName *string
}

// AccountExists reports whether any events were imported for account.
func (r *EventReader) AccountExists(ctx context.Context, account string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM play_events WHERE account = $1)
	`, account).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check account exists: %w", err)
	}
	return exists, nil
}

// GetEvents retrieves every imported record for account in import order.
func (r *EventReader) GetEvents(ctx context.Context, account string) ([]aggregate.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ts, ms_played, track_name, artist_name, album_name, conn_country,
		       platform, reason_start, skipped, offline, shuffle, incognito_mode, episode_name
		FROM play_events
		WHERE account = $1
		ORDER BY id
	`, account)
	if err != nil {
		return nil, fmt.Errorf("query play events: %w", err)
	}
	defer rows.Close()

	var records []aggregate.Record
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(&row.Ts, &row.MsPlayed, &row.TrackName, &row.ArtistName, &row.AlbumName,
			&row.ConnCountry, &row.Platform, &row.ReasonStart, &row.Skipped, &row.Offline,
			&row.Shuffle, &row.Incognito, &row.EpisodeName); err != nil {
			return nil, fmt.Errorf("scan play event: %w", err)
		}
		records = append(records, row.record())
	}
	return records, rows.Err()
}

// record converts a row into the export record shape.
func (row eventRow) record() aggregate.Record {
	rec := aggregate.Record{
		TrackName:   row.TrackName,
		ArtistName:  row.ArtistName,
		AlbumName:   row.AlbumName,
		ConnCountry: row.ConnCountry,
		Platform:    row.Platform,
		ReasonStart: row.ReasonStart,
		Skipped:     row.Skipped,
		Offline:     row.Offline,
		Shuffle:     row.Shuffle,
		Incognito:   row.Incognito,
		EpisodeName: row.EpisodeName,
	}
	if row.Ts != nil {
		ts := row.Ts.UTC().Format(time.RFC3339Nano)
		rec.Ts = &ts
	}
	if row.MsPlayed != nil {
		ms := float64(*row.MsPlayed)
		rec.MsPlayed = &ms
	}
	return rec
}
