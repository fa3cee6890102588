package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"streamstats/internal/config"
	"streamstats/internal/db"
	"streamstats/internal/logging"
	"streamstats/internal/processor"
	queue "streamstats/internal/queue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config load failed: %v\n", err)
		return 1
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: stderr})
	logger := logging.Logger()

	var events processor.EventSource
	if cfg.DB.URL != "" {
		pool, err := db.NewPool(ctx, cfg.DB.URL)
		if err != nil {
			logger.Errorf("db connection failed: %v", err)
			return 1
		}
		defer pool.Close()
		events = db.NewEventReader(pool)
	}

	if len(args) > 0 {
		return analyzeFiles(ctx, processor.NewAnalyzer(ctx, events, nil, ""), args, stdout, stderr)
	}

	if cfg.Redis.URL == "" {
		fmt.Fprintln(stderr, "usage: streamstats <export.json>... (or set REDIS_URL for consumer mode)")
		return 2
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Errorf("invalid redis url: %v", err)
		return 1
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	q := queue.NewRedisQueue(redisClient)
	analyzer := processor.NewAnalyzer(ctx, events, q, cfg.Redis.Results)

	logger.Infof("consuming jobs from %s, reports to %s", cfg.Redis.Queue, cfg.Redis.Results)
	if err := q.Consume(ctx, cfg.Redis.Queue, analyzer.Handle); err != nil && ctx.Err() == nil {
		logger.Errorf("queue consumption ended: %v", err)
		return 1
	}
	return 0
}

// analyzeFiles runs one analysis over the given export files and writes the
// report to stdout.
func analyzeFiles(ctx context.Context, analyzer *processor.Analyzer, paths []string, stdout, stderr io.Writer) int {
	report, err := analyzer.Run(ctx, processor.Job{Files: paths})
	if err != nil {
		fmt.Fprintln(stderr, processor.ErrorMessage(err))
		return 1
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "encode report: %v\n", err)
		return 1
	}
	if _, err := fmt.Fprintf(stdout, "%s\n", body); err != nil {
		return 1
	}
	return 0
}
