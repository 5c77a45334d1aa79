package usecase

import (
	"context"

	"github.com/channelmesh/pathfinder/common"
	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/channelmesh/pathfinder/modules/pathfinding/network"
	"github.com/cockroachdb/errors"
)

// EstimateFee prices a caller-provided path without searching.
func (u *Usecase) EstimateFee(ctx context.Context, path []common.Address, value int64) (int64, error) {
	fee, err := u.graph.EstimateFee(path, value)
	if err != nil {
		if errors.Is(err, network.ErrPathInfeasible) || errors.Is(err, errs.InvalidArgument) {
			return 0, errs.WithPublicMessage(err, "path cannot carry the requested value")
		}
		return 0, errors.Wrap(err, "error during EstimateFee")
	}
	return fee, nil
}
