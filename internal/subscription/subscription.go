package subscription

import (
	"context"
	"sync"

	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/cockroachdb/errors"
)

// BufferSize is the buffer size of a subscription's internal channels. It
// keeps a slow consumer from blocking the dispatcher immediately.
var BufferSize = 8

// Subscription forwards a stream of values from a dispatcher to a consumer
// channel. Values and errors travel on separate channels; closing is
// requested through quit and acknowledged through quitDone once the
// forwarding loop has stopped sending.
type Subscription[T any] struct {
	channel chan<- T
	in      chan T

	err      chan error
	quitOnce sync.Once

	quit     chan struct{}
	quitDone chan struct{}
}

func NewSubscription[T any](channel chan<- T) *Subscription[T] {
	s := &Subscription[T]{
		channel:  channel,
		in:       make(chan T, BufferSize),
		err:      make(chan error, BufferSize),
		quit:     make(chan struct{}),
		quitDone: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Subscription[T]) Unsubscribe() {
	_ = s.UnsubscribeWithContext(context.Background())
}

func (s *Subscription[T]) UnsubscribeWithContext(ctx context.Context) (err error) {
	s.quitOnce.Do(func() {
		select {
		case s.quit <- struct{}{}:
			<-s.quitDone
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return errors.WithStack(err)
}

// Client returns the consumer-side view of this subscription.
func (s *Subscription[T]) Client() *ClientSubscription[T] {
	return &ClientSubscription[T]{subscription: s}
}

// Err returns the error channel of the subscription.
func (s *Subscription[T]) Err() <-chan error {
	return s.err
}

// Done returns a channel closed once the forwarding loop has stopped.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.quitDone
}

// IsClosed reports whether the subscription has stopped forwarding.
func (s *Subscription[T]) IsClosed() bool {
	select {
	case <-s.quitDone:
		return true
	default:
		return false
	}
}

// Send forwards a value to the consumer. It returns an error if the
// subscription is already closed or the context expires first.
func (s *Subscription[T]) Send(ctx context.Context, value T) error {
	select {
	case s.in <- value:
	case <-s.quitDone:
		return errors.Wrap(errs.Closed, "subscription is closed")
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
	return nil
}

// SendError forwards an error to the consumer's error channel.
func (s *Subscription[T]) SendError(ctx context.Context, err error) error {
	select {
	case s.err <- err:
	case <-s.quitDone:
		return errors.Wrap(errs.Closed, "subscription is closed")
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
	return nil
}

func (s *Subscription[T]) run() {
	defer close(s.quitDone)

	for {
		select {
		case <-s.quit:
			return
		case value := <-s.in:
			select {
			case s.channel <- value:
			case <-s.quit:
				return
			}
		}
	}
}
