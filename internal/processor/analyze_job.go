// Package processor runs one analysis job: load events, aggregate, report.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"streamstats/internal/aggregate"
	"streamstats/internal/export"
	"streamstats/internal/logging"
)

var (
	// ErrInvalidJob is returned for a job naming neither or both inputs.
	ErrInvalidJob = errors.New("job must name either files or an account")
	// ErrNoEventSource is returned for an account job when no database is configured.
	ErrNoEventSource = errors.New("no event source configured for account jobs")
	// ErrUnknownAccount is returned for an account with no imported events.
	ErrUnknownAccount = errors.New("unknown account")
)

// Job describes one analysis request from the command line or the queue.
type Job struct {
	Files   []string `json:"files,omitempty"`
	Account string   `json:"account,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// Report wraps a statistics bundle with run metadata.
type Report struct {
	RunID       uuid.UUID                   `json:"runId"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	Sources     []string                    `json:"sources,omitempty"`
	EventCount  int                         `json:"eventCount"`
	Stats       *aggregate.StatisticsBundle `json:"stats,omitempty"`
	Error       string                      `json:"error,omitempty"`
}

// EventSource provides imported records for an account.
type EventSource interface {
	AccountExists(ctx context.Context, account string) (bool, error)
	GetEvents(ctx context.Context, account string) ([]aggregate.Record, error)
}

// Publisher delivers encoded reports to a list.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Analyzer handles analysis jobs.
type Analyzer struct {
	ctx        context.Context
	events     EventSource
	publisher  Publisher
	resultsKey string
	now        func() time.Time
}

// NewAnalyzer creates an analyzer. events may be nil when only file jobs are
// expected, and publisher may be nil when Handle is never called.
func NewAnalyzer(ctx context.Context, events EventSource, publisher Publisher, resultsKey string) *Analyzer {
	return &Analyzer{
		ctx:        ctx,
		events:     events,
		publisher:  publisher,
		resultsKey: resultsKey,
		now:        time.Now,
	}
}

// Run executes one job and returns its report.
func (a *Analyzer) Run(ctx context.Context, job Job) (*Report, error) {
	return a.run(ctx, uuid.New(), job)
}

func (a *Analyzer) run(ctx context.Context, runID uuid.UUID, job Job) (*Report, error) {
	logger := logging.Logger().With("run_id", runID.String())
	startTime := a.now()

	events, sources, err := a.load(ctx, job)
	if err != nil {
		return nil, err
	}
	logger.Infof("loaded %d events from %d sources", len(events), len(sources))

	stats, err := aggregate.BuildStatistics(events)
	if err != nil {
		return nil, fmt.Errorf("build statistics: %w", err)
	}

	logger.Infof("computed statistics: %d songs, %d artists, %d albums, %d months",
		stats.UniqueSongs, stats.UniqueArtists, len(stats.Albums), len(stats.Months))

	elapsed := a.now().Sub(startTime)
	logger.Infof("analysis completed in %v", elapsed)

	return &Report{
		RunID:       runID,
		GeneratedAt: startTime.UTC(),
		Sources:     sources,
		EventCount:  len(events),
		Stats:       stats,
	}, nil
}

func (a *Analyzer) load(ctx context.Context, job Job) ([]aggregate.PlayEvent, []string, error) {
	hasFiles, hasAccount := len(job.Files) > 0, job.Account != ""
	switch {
	case hasFiles == hasAccount:
		return nil, nil, ErrInvalidJob
	case hasFiles:
		events, err := export.LoadFiles(ctx, job.Files)
		if err != nil {
			return nil, nil, err
		}
		return events, job.Files, nil
	default:
		if a.events == nil {
			return nil, nil, ErrNoEventSource
		}
		exists, err := a.events.AccountExists(ctx, job.Account)
		if err != nil {
			return nil, nil, fmt.Errorf("check account exists: %w", err)
		}
		if !exists {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownAccount, job.Account)
		}
		records, err := a.events.GetEvents(ctx, job.Account)
		if err != nil {
			return nil, nil, fmt.Errorf("get events: %w", err)
		}
		return aggregate.NormalizeAll(records), []string{"account:" + job.Account}, nil
	}
}

// Handle processes a single analysis job from the queue. The report, or an
// error report when the run fails, is published to the job's reply list. A
// failed run is returned so the queue can dead-letter the payload.
func (a *Analyzer) Handle(payload []byte) error {
	logger := logging.Logger()

	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("unmarshal job payload: %w", err)
	}

	runID := uuid.New()
	logger.Infof("processing analysis job %s", runID)

	report, runErr := a.run(a.ctx, runID, job)
	if runErr != nil {
		logger.Errorf("analysis job %s failed: %v", runID, runErr)
		report = &Report{
			RunID:       runID,
			GeneratedAt: a.now().UTC(),
			Error:       ErrorMessage(runErr),
		}
	}

	if err := a.publish(job, report); err != nil {
		return err
	}
	return runErr
}

func (a *Analyzer) publish(job Job, report *Report) error {
	if a.publisher == nil {
		return errors.New("no publisher configured")
	}
	key := job.ReplyTo
	if key == "" {
		key = a.resultsKey
	}
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := a.publisher.Publish(a.ctx, key, body); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

// ErrorMessage renders a run failure for users: an empty dataset reads as
// "no data found" and a parse failure names the offending file.
func ErrorMessage(err error) string {
	var pe *export.ParseError
	switch {
	case errors.Is(err, aggregate.ErrEmptyDataset):
		return aggregate.ErrEmptyDataset.Error()
	case errors.As(err, &pe):
		return pe.Error()
	default:
		return err.Error()
	}
}
