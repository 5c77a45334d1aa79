package usecase

import (
	"context"

	"github.com/channelmesh/pathfinder/modules/pathfinding/network"
)

// Stats summarizes the current graph size.
func (u *Usecase) Stats(ctx context.Context) network.Stats {
	return u.graph.Stats()
}
