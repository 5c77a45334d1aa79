package network

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/channelmesh/pathfinder/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenChannel(t *testing.T) {
	g := NewTokenNetwork()

	require.NoError(t, g.OpenChannel(1, addr(1), addr(2), 100, 50, 60))
	assert.Equal(t, Stats{Channels: 1, Nodes: 2}, g.Stats())
	assert.True(t, g.hasNode(addr(1)))
	assert.True(t, g.hasNode(addr(2)))
	assert.False(t, g.hasNode(addr(3)))

	t.Run("duplicate channel id", func(t *testing.T) {
		err := g.OpenChannel(1, addr(3), addr(4), 100, 0, 0)
		assert.ErrorIs(t, err, ErrDuplicateChannel)
	})

	t.Run("duplicate participant pair", func(t *testing.T) {
		err := g.OpenChannel(2, addr(1), addr(2), 100, 0, 0)
		assert.ErrorIs(t, err, ErrDuplicateChannel)
	})

	t.Run("self channel", func(t *testing.T) {
		err := g.OpenChannel(3, addr(5), addr(5), 100, 0, 0)
		assert.Error(t, err)
	})

	t.Run("negative capacity", func(t *testing.T) {
		err := g.OpenChannel(4, addr(5), addr(6), 100, -1, 0)
		assert.Error(t, err)
	})
}

func TestUpdateCapacity(t *testing.T) {
	g := NewTokenNetwork()
	require.NoError(t, g.OpenChannel(1, addr(1), addr(2), 100, 50, 60))

	require.NoError(t, g.UpdateCapacity(1, addr(1), 75))

	t.Run("unknown channel", func(t *testing.T) {
		err := g.UpdateCapacity(9, addr(1), 10)
		assert.ErrorIs(t, err, ErrUnknownChannel)
	})

	t.Run("participant not in channel", func(t *testing.T) {
		err := g.UpdateCapacity(1, addr(9), 10)
		assert.Error(t, err)
	})

	t.Run("negative capacity", func(t *testing.T) {
		err := g.UpdateCapacity(1, addr(1), -10)
		assert.Error(t, err)
	})
}

func TestUpdateFeeSchedule(t *testing.T) {
	g := NewTokenNetwork()
	require.NoError(t, g.OpenChannel(1, addr(1), addr(2), 100, 50, 60))
	require.NoError(t, g.OpenChannel(2, addr(2), addr(3), 100, 50, 60))

	base := time.Unix(1_700_000_000, 0)
	require.NoError(t, g.UpdateFeeSchedule(1, addr(2), FeeSchedule{Flat: 2}, base))

	t.Run("unknown channel", func(t *testing.T) {
		err := g.UpdateFeeSchedule(9, addr(1), FeeSchedule{}, base)
		assert.ErrorIs(t, err, ErrUnknownChannel)
	})

	t.Run("non participant", func(t *testing.T) {
		err := g.UpdateFeeSchedule(1, addr(9), FeeSchedule{}, base)
		assert.ErrorIs(t, err, ErrUnauthorizedFeeUpdate)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		err := g.UpdateFeeSchedule(1, addr(2), FeeSchedule{Flat: -1}, base.Add(time.Hour))
		assert.Error(t, err)
	})

	t.Run("stale update is rejected", func(t *testing.T) {
		err := g.UpdateFeeSchedule(1, addr(2), FeeSchedule{Flat: 9}, base.Add(-time.Hour))
		assert.ErrorIs(t, err, ErrStaleFeeUpdate)

		// the applied schedule is untouched
		fee, err := g.EstimateFee([]common.Address{addr(1), addr(2), addr(3)}, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), fee)
	})

	t.Run("equal timestamp is rejected", func(t *testing.T) {
		err := g.UpdateFeeSchedule(1, addr(2), FeeSchedule{Flat: 3}, base)
		assert.ErrorIs(t, err, ErrStaleFeeUpdate)

		fee, err := g.EstimateFee([]common.Address{addr(1), addr(2), addr(3)}, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), fee)
	})
}

func TestCloseChannel(t *testing.T) {
	g := NewTokenNetwork()
	require.NoError(t, g.OpenChannel(1, addr(1), addr(2), 100, 50, 60))
	require.NoError(t, g.OpenChannel(2, addr(2), addr(3), 100, 50, 60))

	g.CloseChannel(1)
	assert.Equal(t, Stats{Channels: 1, Nodes: 2}, g.Stats())
	assert.False(t, g.hasNode(addr(1)))
	assert.True(t, g.hasNode(addr(2)))

	// closing again is a no-op
	g.CloseChannel(1)
	g.CloseChannel(9)
	assert.Equal(t, Stats{Channels: 1, Nodes: 2}, g.Stats())

	// the channel id can be reused after close
	assert.NoError(t, g.OpenChannel(1, addr(1), addr(2), 100, 50, 60))
}

func TestConcurrentQueriesAndMutations(t *testing.T) {
	g := NewTokenNetwork()
	require.NoError(t, g.OpenChannel(1, addr(1), addr(2), 100, 100, 100))
	require.NoError(t, g.OpenChannel(2, addr(2), addr(3), 100, 100, 100))

	ctx := context.Background()
	done := make(chan struct{})
	var wg sync.WaitGroup

	// single writer churning fees, capacities, a side channel and
	// reachability while readers query the stable 1-2-3 corridor
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		clock := time.Unix(1_700_000_000, 0)
		for i := 0; i < 200; i++ {
			clock = clock.Add(time.Second)
			_ = g.UpdateFeeSchedule(1, addr(2), FeeSchedule{Flat: int64(i % 3)}, clock)
			_ = g.UpdateCapacity(2, addr(2), int64(90+i%10))
			if i%2 == 0 {
				_ = g.OpenChannel(3, addr(3), addr(4), 100, 100, 100)
				g.SetReachability(addr(4), ReachabilityUnreachable)
			} else {
				g.CloseChannel(3)
				g.SetReachability(addr(4), ReachabilityUnknown)
			}
		}
	}()

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}

				routes, err := g.FindPaths(ctx, addr(1), addr(3), 10, 3)
				assert.NoError(t, err)
				for _, route := range routes {
					assert.Equal(t, addr(1), route.Path[0])
					assert.Equal(t, addr(3), route.Path[len(route.Path)-1])
				}

				fee, err := g.EstimateFee([]common.Address{addr(1), addr(2), addr(3)}, 10)
				assert.NoError(t, err)
				assert.LessOrEqual(t, fee, int64(2))

				g.Stats()
			}
		}()
	}
	wg.Wait()
}

func TestSetReachability(t *testing.T) {
	g := NewTokenNetwork()

	g.SetReachability(addr(1), ReachabilityUnreachable)
	assert.False(t, g.mediatorAllowed(addr(1)))

	g.SetReachability(addr(1), ReachabilityReachable)
	assert.True(t, g.mediatorAllowed(addr(1)))

	// unknown clears the entry and keeps the node routable
	g.SetReachability(addr(1), ReachabilityUnknown)
	assert.True(t, g.mediatorAllowed(addr(1)))
}
