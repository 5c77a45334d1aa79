package usecase

import (
	"context"

	"github.com/channelmesh/pathfinder/common"
	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/channelmesh/pathfinder/modules/pathfinding/network"
	"github.com/cockroachdb/errors"
)

// FindPaths returns up to maxPaths cheapest feasible routes for the transfer.
// Invalid queries surface as public errors so the API can return them as-is.
func (u *Usecase) FindPaths(ctx context.Context, source, target common.Address, value int64, maxPaths int) ([]network.Route, error) {
	routes, err := u.graph.FindPaths(ctx, source, target, value, maxPaths)
	if err != nil {
		if errors.Is(err, network.ErrInvalidQuery) {
			return nil, errs.WithPublicMessage(err, "invalid path query")
		}
		return nil, errors.Wrap(err, "error during FindPaths")
	}
	return routes, nil
}
