package network

import (
	"github.com/channelmesh/pathfinder/common"
	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/cockroachdb/errors"
)

// ErrPathInfeasible is returned when a concrete path cannot carry the
// requested value: a hop is missing, a capacity is exceeded, or a fee
// schedule has no solution for the required amount.
var ErrPathInfeasible = errors.Wrap(errs.NotFound, "path cannot carry the requested value")

// Route is one feasible path together with its exact mediation fee total.
// The fee is what the initiator pays on top of the transferred value; it can
// be negative when imbalance rebates outweigh the flat and proportional fees.
type Route struct {
	Path     []common.Address `json:"path"`
	Fee      int64            `json:"estimated_fee"`
	HopCount int              `json:"hops"`
	AmountIn int64            `json:"-"`
}

// EstimateFee computes the exact total mediation fee for transferring value
// along the given path, without searching. The path must start and end at
// channel edges present in the graph.
func (t *TokenNetwork) EstimateFee(path []common.Address, value int64) (int64, error) {
	if len(path) < 2 {
		return 0, errors.Wrap(errs.InvalidArgument, "path needs at least two nodes")
	}
	if value <= 0 {
		return 0, errors.Wrap(errs.InvalidArgument, "transfer value must be positive")
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	route, err := t.unrollFees(path, value)
	if err != nil {
		return 0, err
	}
	return route.Fee, nil
}

// unrollFees walks the path backward from the target, computing at every
// mediator the amount that must enter it so the requested value arrives at
// the end. Fees accumulate hop by hop: each mediator charges its outgoing
// edge's sender fee on the amount it forwards, then its incoming edge's
// receiver fee on everything it must still hold. The initiator's own edge
// charges nothing. Capacities are checked against the amounts actually
// crossing each edge. Must be called with at least the read lock held.
func (t *TokenNetwork) unrollFees(path []common.Address, value int64) (Route, error) {
	amounts := make([]int64, len(path))
	amounts[len(path)-1] = value

	for m := len(path) - 2; m >= 1; m-- {
		out, ok := t.edges[path[m]][path[m+1]]
		if !ok {
			return Route{}, errors.WithStack(ErrPathInfeasible)
		}
		feeOut, err := out.Schedule.SenderFee(out.Capacity, amounts[m+1])
		if err != nil {
			return Route{}, errors.WithStack(ErrPathInfeasible)
		}

		in, ok := t.edges[path[m]][path[m-1]]
		if !ok {
			return Route{}, errors.WithStack(ErrPathInfeasible)
		}
		feeIn, err := in.Schedule.ReceiverFee(in.Capacity, amounts[m+1]+feeOut)
		if err != nil {
			return Route{}, errors.WithStack(ErrPathInfeasible)
		}
		amounts[m] = amounts[m+1] + feeOut + feeIn
	}
	amounts[0] = amounts[1]

	for i := 0; i < len(path)-1; i++ {
		edge, ok := t.edges[path[i]][path[i+1]]
		if !ok || edge.Capacity < amounts[i+1] {
			return Route{}, errors.WithStack(ErrPathInfeasible)
		}
	}

	return Route{
		Path:     path,
		Fee:      amounts[0] - value,
		HopCount: len(path) - 1,
		AmountIn: amounts[0],
	}, nil
}
