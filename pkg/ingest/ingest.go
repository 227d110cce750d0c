// Package ingest loads a dictionary into the store: keys are partitioned across
// a worker pool, resolved in parallel and drained by a single transactional writer.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/japaniel/dictload/pkg/db"
	"github.com/japaniel/dictload/pkg/dictionary"
	"github.com/japaniel/dictload/pkg/sanitize"
)

const (
	// DefaultProgressEvery is the number of records between progress reports.
	DefaultProgressEvery = 3000
	// DefaultBufferPerWorker sizes the result channel relative to the worker count.
	DefaultBufferPerWorker = 64
)

// Loader drives one conversion run.
type Loader struct {
	// Workers is the number of extraction goroutines. Values below 1 mean DefaultWorkers().
	Workers int
	// StripMarkup removes <img> and <a> tags from definitions.
	StripMarkup bool
	// ProgressEvery is the number of records between progress reports.
	ProgressEvery int
	// BufferSize bounds the result channel. Zero means Workers*DefaultBufferPerWorker.
	BufferSize int
	// Logger is used for progress and per-record warnings. nil means slog.Default().
	Logger *slog.Logger
	// OnProgress is called with every progress report and once at the end.
	OnProgress func(Progress)
	// Fingerprint computes Summary.Fingerprint after the commit.
	Fingerprint bool
}

// NewLoader creates a Loader with default settings.
func NewLoader(workers int) *Loader {
	return &Loader{
		Workers:       workers,
		ProgressEvery: DefaultProgressEvery,
	}
}

// Progress is a snapshot of a running load.
type Progress struct {
	Processed int
	Total     int
	Elapsed   time.Duration
}

// Percent returns the share of keys processed, or -1 when the total is unknown.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return -1
	}
	return float64(p.Processed) * 100 / float64(p.Total)
}

// Rate returns records per second.
func (p Progress) Rate() float64 {
	secs := p.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(p.Processed) / secs
}

// Summary describes a finished load.
type Summary struct {
	Total         int
	Inserted      int
	Skipped       int
	ResolveFailed int
	Elapsed       time.Duration
	// Interrupted is set when the context was canceled before every worker finished.
	Interrupted bool
	// WorkerErr holds the workers that died before finishing their partition.
	WorkerErr error
	// Fingerprint is set when Loader.Fingerprint is enabled.
	Fingerprint *db.Fingerprint
}

// Rate returns inserted records per second.
func (s *Summary) Rate() float64 {
	return Progress{Processed: s.Inserted, Elapsed: s.Elapsed}.Rate()
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Convert creates or reuses the store at path, loads dict into it and closes it.
func (l *Loader) Convert(ctx context.Context, dict dictionary.Dictionary, path string) (*Summary, error) {
	l.logger().Info("creating database", "path", path)
	store, err := db.Open(path, l.logger())
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return l.Load(ctx, dict, store)
}

func (l *Loader) workers() int {
	if l.Workers < 1 {
		return DefaultWorkers()
	}
	return l.Workers
}

// Load writes every definition of dict into store inside one transaction and
// commits once the result stream is exhausted.
//
// A record whose insert fails is logged and skipped. Canceling ctx stops the
// receive loop early; rows written so far are still committed and an error
// is returned. Worker panics are reported the same way after the commit.
func (l *Loader) Load(ctx context.Context, dict dictionary.Dictionary, store *db.Store) (*Summary, error) {
	logger := l.logger()
	workers := l.workers()

	w, err := store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = w.Rollback() }()

	parts, total := Partition(dict.Keys(), workers)
	bufSize := l.BufferSize
	if bufSize <= 0 {
		bufSize = workers * DefaultBufferPerWorker
	}
	results := make(chan Record, bufSize)

	poolCtx, stop := context.WithCancel(ctx)
	defer stop()

	pool := NewWorkerPool(dict, logger)
	if err := pool.Start(poolCtx, parts, results); err != nil {
		return nil, err
	}

	every := l.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	sum := &Summary{Total: total}
	start := time.Now()
	processed := 0

	logger.Info("inserting data into database", "keys", total, "workers", workers, "path", store.Path())
Loop:
	for {
		select {
		case rec, ok := <-results:
			if !ok {
				break Loop
			}
			processed++
			html := sanitize.Sanitize(rec.HTML, l.StripMarkup)
			if err := w.Insert(rec.Word, html); err != nil {
				sum.Skipped++
				logger.Warn("error inserting record, skipped", "record", processed, "word", rec.Word, "error", err)
				logger.Debug("rejected data", "source_html", html)
			} else {
				sum.Inserted++
			}
			if processed%every == 0 {
				l.report(Progress{Processed: processed, Total: total, Elapsed: time.Since(start)})
			}
		case <-ctx.Done():
			sum.Interrupted = true
			logger.Error("load interrupted, committing records written so far",
				"processed", processed, "error", ctx.Err())
			break Loop
		}
	}

	// Release any worker still blocked on a send, then wait for all of them.
	stop()
	sum.WorkerErr = pool.Wait()
	sum.ResolveFailed = pool.ResolveFailed()
	if pool.Abandoned() > 0 {
		sum.Interrupted = true
	}

	if err := w.Commit(); err != nil {
		sum.Elapsed = time.Since(start)
		return sum, err
	}
	sum.Elapsed = time.Since(start)
	l.report(Progress{Processed: processed, Total: total, Elapsed: sum.Elapsed})

	logger.Info("load committed",
		"inserted", sum.Inserted,
		"skipped", sum.Skipped,
		"resolve_failed", sum.ResolveFailed,
		"elapsed", sum.Elapsed.Round(time.Millisecond),
		"rate", fmt.Sprintf("%.0f records/s", sum.Rate()))

	if l.Fingerprint {
		fp, err := store.Fingerprint(context.WithoutCancel(ctx))
		if err != nil {
			return sum, err
		}
		sum.Fingerprint = &fp
	}

	var errs []error
	if sum.Interrupted {
		cause := context.Cause(ctx)
		if cause == nil {
			cause = context.Canceled
		}
		errs = append(errs, fmt.Errorf("load interrupted after %d records: %w", processed, cause))
	}
	if sum.WorkerErr != nil {
		errs = append(errs, sum.WorkerErr)
	}
	return sum, errors.Join(errs...)
}

func (l *Loader) report(p Progress) {
	attrs := []any{"processed", p.Processed, "rate", fmt.Sprintf("%.0f records/s", p.Rate())}
	if pct := p.Percent(); pct >= 0 {
		attrs = append(attrs, "total", p.Total, "percent", fmt.Sprintf("%.1f%%", pct))
	}
	l.logger().Info("inserted records", attrs...)
	if l.OnProgress != nil {
		l.OnProgress(p)
	}
}
