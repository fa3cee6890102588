// Package export reads streaming-history export files into play events.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"streamstats/internal/aggregate"
)

// maxParallelReads bounds how many files are read at once.
const maxParallelReads = 4

var errInvalidJSON = errors.New("invalid JSON")

// ParseError reports an export file that is not valid JSON.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decode parses one export document. A document that is valid JSON but not an
// array holds no records. A field whose value has the wrong type is left
// absent; an element that is not an object becomes an empty record so it
// still counts as an event.
func Decode(name string, data []byte) ([]aggregate.Record, error) {
	if !json.Valid(data) {
		return nil, &ParseError{File: name, Err: syntaxError(data)}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, &ParseError{File: name, Err: err}
	}

	records := make([]aggregate.Record, 0, len(elements))
	for _, raw := range elements {
		records = append(records, decodeRecord(raw))
	}
	return records, nil
}

// decodeRecord reads each known field on its own so one mistyped value does
// not discard the rest of the element.
func decodeRecord(raw json.RawMessage) aggregate.Record {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return aggregate.Record{}
	}
	return aggregate.Record{
		Ts:          field[string](fields, "ts"),
		MsPlayed:    field[float64](fields, "ms_played"),
		TrackName:   field[string](fields, "master_metadata_track_name"),
		ArtistName:  field[string](fields, "master_metadata_album_artist_name"),
		AlbumName:   field[string](fields, "master_metadata_album_album_name"),
		ConnCountry: field[string](fields, "conn_country"),
		Platform:    field[string](fields, "platform"),
		ReasonStart: field[string](fields, "reason_start"),
		Skipped:     field[bool](fields, "skipped"),
		Offline:     field[bool](fields, "offline"),
		Shuffle:     field[bool](fields, "shuffle"),
		Incognito:   field[bool](fields, "incognito_mode"),
		EpisodeName: field[string](fields, "episode_name"),
	}
}

// field decodes fields[name] as T. A missing, null or mistyped value is nil.
func field[T any](fields map[string]json.RawMessage, name string) *T {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// syntaxError recovers the decoder's description of why data is not JSON.
func syntaxError(data []byte) error {
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	return errInvalidJSON
}

// LoadFiles reads every file concurrently and returns their normalized events
// in argument order. Any read or parse failure aborts the whole load and no
// events are returned.
func LoadFiles(ctx context.Context, paths []string) ([]aggregate.PlayEvent, error) {
	results := make([][]aggregate.Record, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", filepath.Base(path), err)
			}
			records, err := Decode(filepath.Base(path), data)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	events := make([]aggregate.PlayEvent, 0, total)
	for _, r := range results {
		events = append(events, aggregate.NormalizeAll(r)...)
	}
	return events, nil
}
