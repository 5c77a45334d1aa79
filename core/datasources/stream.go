package datasources

import (
	"context"
	"sync"

	"github.com/channelmesh/pathfinder/internal/subscription"
	"github.com/cockroachdb/errors"
)

// StreamDatasource is an in-process event source. Producers publish event
// batches directly; every active subscriber receives each batch. It backs
// deployments where state updates arrive over a local bus as well as tests.
type StreamDatasource[T any] struct {
	name string

	mu   sync.Mutex
	subs []*subscription.Subscription[[]T]
}

func NewStreamDatasource[T any](name string) *StreamDatasource[T] {
	return &StreamDatasource[T]{name: name}
}

func (d *StreamDatasource[T]) Name() string {
	return d.name
}

// SubscribeEvents registers a new subscriber. The returned handle stops
// delivery when unsubscribed.
func (d *StreamDatasource[T]) SubscribeEvents(_ context.Context, ch chan<- []T) (*subscription.ClientSubscription[[]T], error) {
	sub := subscription.NewSubscription(ch)

	d.mu.Lock()
	d.subs = append(d.subs, sub)
	d.mu.Unlock()

	return sub.Client(), nil
}

// Publish delivers one batch of events to every active subscriber. Closed
// subscriptions are dropped from the subscriber list.
func (d *StreamDatasource[T]) Publish(ctx context.Context, events ...T) error {
	if len(events) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	active := make([]*subscription.Subscription[[]T], 0, len(d.subs))
	for _, sub := range d.subs {
		if sub.IsClosed() {
			continue
		}
		if err := sub.Send(ctx, events); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return errors.WithStack(err)
			}
			continue
		}
		active = append(active, sub)
	}
	d.subs = active
	return nil
}
