package worker

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job processes the i-th item of a batch.
type Job func(ctx context.Context, i int) error

// Pool runs batches of jobs on a bounded number of goroutines.
type Pool struct {
	size   int
	logger *zap.Logger
}

// NewPool constructs a Pool. A non-positive size means one worker per CPU.
func NewPool(size int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{size: size, logger: logger}
}

// Size reports the worker count.
func (p *Pool) Size() int {
	return p.size
}

// Run calls job for every index in [0, n). The first failing job cancels the
// context handed to the rest, and its error is returned once all started jobs
// have returned.
func (p *Pool) Run(ctx context.Context, n int, job Job) error {
	if n == 0 {
		return nil
	}

	workers := min(p.size, n)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	p.logger.Debug("worker pool started", zap.Int("workers", workers), zap.Int("jobs", n))
	for i := 0; i < n; i++ {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return job(groupCtx, i)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
