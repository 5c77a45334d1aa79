package datasources

import (
	"context"

	"github.com/channelmesh/pathfinder/internal/subscription"
)

// Datasource is a source of network state events. Implementations push
// batches of observed events to subscribers until the subscription is
// cancelled.
type Datasource[T any] interface {
	Name() string
	SubscribeEvents(ctx context.Context, ch chan<- []T) (*subscription.ClientSubscription[[]T], error)
}
