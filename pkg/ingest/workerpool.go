package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/japaniel/dictload/pkg/dictionary"
)

// Record is a resolved headword and its raw definition.
type Record struct {
	Word string
	HTML string
}

// WorkerPool resolves partitions of keys in parallel, one goroutine per
// partition, and funnels the results onto a single channel.
// The dictionary is shared read-only between all workers.
type WorkerPool struct {
	dict   dictionary.Dictionary
	logger *slog.Logger

	g       errgroup.Group
	started atomic.Bool
	done    chan struct{}

	resolveFailed atomic.Int64
	abandoned     atomic.Int64

	errMu sync.Mutex
	errs  []error
}

// NewWorkerPool creates a pool over dict. A nil logger uses slog.Default().
func NewWorkerPool(dict dictionary.Dictionary, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		dict:   dict,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches one worker per partition. Every worker sends onto out as soon
// as a key is resolved. out is closed once all workers have returned, which is
// the only completion signal consumers get.
//
// Canceling ctx tells workers the receiver is gone: pending sends are dropped
// and the workers return instead of blocking.
func (p *WorkerPool) Start(ctx context.Context, parts [][]dictionary.Key, out chan<- Record) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrPoolStarted
	}
	for i, part := range parts {
		p.g.Go(func() error {
			return p.work(ctx, i, part, out)
		})
	}
	go func() {
		_ = p.g.Wait()
		close(out)
		close(p.done)
	}()
	return nil
}

// Wait blocks until every worker has returned and reports workers that died
// before finishing their partition.
func (p *WorkerPool) Wait() error {
	if !p.started.Load() {
		return nil
	}
	<-p.done
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return errors.Join(p.errs...)
}

// Abandoned returns the number of workers that stopped early because the
// receiver went away.
func (p *WorkerPool) Abandoned() int {
	return int(p.abandoned.Load())
}

// ResolveFailed returns the number of keys skipped because resolution failed.
func (p *WorkerPool) ResolveFailed() int {
	return int(p.resolveFailed.Load())
}

func (p *WorkerPool) work(ctx context.Context, id int, part []dictionary.Key, out chan<- Record) (err error) {
	handled := 0
	defer func() {
		if r := recover(); r != nil {
			werr := &WorkerError{Worker: id, Unprocessed: len(part) - handled, Cause: r}
			p.logger.Error("worker panicked, rest of its partition is lost",
				"worker", id, "unprocessed", werr.Unprocessed, "panic", r)
			p.errMu.Lock()
			p.errs = append(p.errs, werr)
			p.errMu.Unlock()
			err = werr
		}
	}()

	for _, k := range part {
		def, rerr := p.dict.Resolve(k)
		if rerr != nil {
			p.resolveFailed.Add(1)
			p.logger.Warn("resolve failed, skipped", "word", k.Text, "error", rerr)
			handled++
			continue
		}
		select {
		case out <- Record{Word: k.Text, HTML: def}:
		case <-ctx.Done():
			p.abandoned.Add(1)
			p.logger.Warn("result receiver gone, worker stopping",
				"worker", id, "unsent", len(part)-handled)
			return nil
		}
		handled++
	}
	return nil
}

// WorkerError reports a worker that stopped before the end of its partition.
type WorkerError struct {
	Worker      int
	Unprocessed int
	Cause       any
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d panicked with %d keys unprocessed: %v", e.Worker, e.Unprocessed, e.Cause)
}

// ErrPoolStarted is returned if Start is called more than once.
var ErrPoolStarted = &PoolError{"worker pool already started"}

// PoolError provides a simple typed error for pool operations.
type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }
