package datasources

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamDatasourcePublish(t *testing.T) {
	ctx := context.Background()
	ds := NewStreamDatasource[int]("test")
	assert.Equal(t, "test", ds.Name())

	ch := make(chan []int, 1)
	sub, err := ds.SubscribeEvents(ctx, ch)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, ds.Publish(ctx, 1, 2, 3))

	select {
	case batch := <-ch:
		assert.Equal(t, []int{1, 2, 3}, batch)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for batch")
	}
}

func TestStreamDatasourceEmptyPublish(t *testing.T) {
	ctx := context.Background()
	ds := NewStreamDatasource[int]("test")

	ch := make(chan []int, 1)
	sub, err := ds.SubscribeEvents(ctx, ch)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, ds.Publish(ctx))
	select {
	case batch := <-ch:
		t.Fatalf("unexpected batch: %v", batch)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStreamDatasourceFanOut(t *testing.T) {
	ctx := context.Background()
	ds := NewStreamDatasource[int]("test")

	ch1 := make(chan []int, 1)
	ch2 := make(chan []int, 1)
	sub1, err := ds.SubscribeEvents(ctx, ch1)
	require.NoError(t, err)
	defer sub1.Unsubscribe()
	sub2, err := ds.SubscribeEvents(ctx, ch2)
	require.NoError(t, err)
	defer sub2.Unsubscribe()

	require.NoError(t, ds.Publish(ctx, 42))
	for _, ch := range []chan []int{ch1, ch2} {
		select {
		case batch := <-ch:
			assert.Equal(t, []int{42}, batch)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for batch")
		}
	}
}

func TestStreamDatasourceUnsubscribe(t *testing.T) {
	ctx := context.Background()
	ds := NewStreamDatasource[int]("test")

	ch := make(chan []int, 1)
	sub, err := ds.SubscribeEvents(ctx, ch)
	require.NoError(t, err)

	sub.Unsubscribe()
	require.True(t, sub.IsClosed())

	require.NoError(t, ds.Publish(ctx, 1))
	select {
	case batch := <-ch:
		t.Fatalf("unexpected batch after unsubscribe: %v", batch)
	case <-time.After(50 * time.Millisecond):
	}
}
