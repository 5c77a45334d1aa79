package subscription

import "context"

// ClientSubscription is the consumer-side handle of a subscription. It can
// observe errors and lifecycle, and cancel the subscription, but cannot send.
type ClientSubscription[T any] struct {
	subscription *Subscription[T]
}

func (c *ClientSubscription[T]) Unsubscribe() {
	c.subscription.Unsubscribe()
}

func (c *ClientSubscription[T]) UnsubscribeWithContext(ctx context.Context) error {
	return c.subscription.UnsubscribeWithContext(ctx)
}

// Err returns the error channel of the subscription.
func (c *ClientSubscription[T]) Err() <-chan error {
	return c.subscription.Err()
}

// Done returns a channel closed once the subscription has stopped.
func (c *ClientSubscription[T]) Done() <-chan struct{} {
	return c.subscription.Done()
}

// IsClosed reports whether the subscription has stopped forwarding.
func (c *ClientSubscription[T]) IsClosed() bool {
	return c.subscription.IsClosed()
}
