package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/channelmesh/pathfinder/core/datasources"
	"github.com/channelmesh/pathfinder/pkg/logger"
	"github.com/channelmesh/pathfinder/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
)

// Worker is a long-running unit started by the command layer.
type Worker interface {
	Run(ctx context.Context) error
}

// Processor consumes batches of events delivered by a feed.
type Processor[T any] interface {
	Name() string
	Process(ctx context.Context, events []T) error
	Shutdown(ctx context.Context) error
}

// Feed is a generic worker connecting one datasource to one processor. It
// subscribes to the datasource and hands every delivered batch to the
// processor, in order, until shut down.
type Feed[T any] struct {
	Processor  Processor[T]
	Datasource datasources.Datasource[T]

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func New[T any](processor Processor[T], datasource datasources.Datasource[T]) *Feed[T] {
	return &Feed[T]{
		Processor:  processor,
		Datasource: datasource,

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (f *Feed[T]) Shutdown() error {
	return f.ShutdownWithContext(context.Background())
}

func (f *Feed[T]) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.ShutdownWithContext(ctx)
}

func (f *Feed[T]) ShutdownWithContext(ctx context.Context) (err error) {
	f.quitOnce.Do(func() {
		close(f.quit)
		select {
		case <-f.done:
		case <-time.After(180 * time.Second):
			err = errors.Wrap(errs.Timeout, "feed shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "feed shutdown context canceled")
		}
	})
	return
}

func (f *Feed[T]) Run(ctx context.Context) error {
	defer close(f.done)

	ctx = logger.WithContext(ctx,
		slog.String("package", "feed"),
		slog.String("processor", f.Processor.Name()),
		slog.String("datasource", f.Datasource.Name()),
	)

	ch := make(chan []T)
	subscription, err := f.Datasource.SubscribeEvents(ctx, ch)
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to datasource")
	}
	defer subscription.Unsubscribe()

	logger.InfoContext(ctx, "Feed started")
	for {
		select {
		case <-f.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping feed")
			if err := f.Processor.Shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown processor", slogx.Error(err))
				return errors.Wrap(err, "processor shutdown failed")
			}
			return nil
		case events := <-ch:
			if len(events) == 0 {
				continue
			}

			startAt := time.Now()
			if err := f.Processor.Process(ctx, events); err != nil {
				logger.ErrorContext(ctx, "Feed failed while processing", slogx.Error(err))
				return errors.WithStack(err)
			}
			logger.DebugContext(ctx, "Processed events",
				slogx.Int("total_events", len(events)),
				slogx.Duration("duration", time.Since(startAt)),
			)
		case <-subscription.Done():
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, "context done")
			}
			return nil
		case err := <-subscription.Err():
			if err != nil {
				return errors.Wrap(err, "datasource subscription failed")
			}
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}
}
