package network

import (
	"sort"

	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// ppmDenominator is the denominator of proportional fee rates: a rate of
// 10_000 ppm charges 1% of the amount crossing the edge.
const ppmDenominator = 1_000_000

// maxFeeIterations bounds the fixed-point refinement when inverting the fee
// function on the receiving side. Non-convergence within the bound makes the
// hop infeasible instead of looping.
const maxFeeIterations = 32

var (
	// errFeeOutsideDomain marks amounts that leave the imbalance table's
	// covered capacity range. Not an error to callers: the edge is simply
	// infeasible for that amount.
	errFeeOutsideDomain = errors.New("amount outside imbalance penalty domain")
	errNoFeeConvergence = errors.New("fee inversion did not converge")
)

// PenaltyPoint is one breakpoint of a piecewise-linear imbalance penalty.
type PenaltyPoint struct {
	Capacity int64 `json:"capacity" mapstructure:"capacity"`
	Penalty  int64 `json:"penalty" mapstructure:"penalty"`
}

// FeeSchedule is the cost function a participant declares for one directional
// edge. A zero value schedule charges nothing everywhere.
type FeeSchedule struct {
	// Flat is an absolute fee charged per use of the edge.
	Flat int64 `json:"flat"`

	// Proportional is a parts-per-million rate applied to the amount
	// traversing the edge.
	Proportional int64 `json:"proportional"`

	// ImbalancePenalty is an ordered breakpoint table, capacities strictly
	// increasing. Empty means zero imbalance cost everywhere.
	ImbalancePenalty []PenaltyPoint `json:"imbalance_penalty,omitempty"`
}

// Validate reports whether the schedule is well formed. Schedules failing
// validation are rejected at update time, before they reach the graph.
func (s FeeSchedule) Validate() error {
	if s.Flat < 0 {
		return errors.Wrap(errs.InvalidArgument, "flat fee must not be negative")
	}
	if s.Proportional < 0 || s.Proportional >= ppmDenominator {
		return errors.Wrapf(errs.InvalidArgument, "proportional fee must be in [0, %d) ppm", ppmDenominator)
	}
	if len(s.ImbalancePenalty) == 1 {
		return errors.Wrap(errs.InvalidArgument, "imbalance penalty needs at least two breakpoints")
	}
	for i, pt := range s.ImbalancePenalty {
		if pt.Capacity < 0 || pt.Penalty < 0 {
			return errors.Wrap(errs.InvalidArgument, "imbalance breakpoints must not be negative")
		}
		if i > 0 && pt.Capacity <= s.ImbalancePenalty[i-1].Capacity {
			return errors.Wrap(errs.InvalidArgument, "imbalance breakpoint capacities must be strictly increasing")
		}
	}
	return nil
}

// SenderFee is the fee the edge owner charges for forwarding amount out of an
// edge that currently has the given capacity. The amount crossing the edge is
// known exactly on the sending side, so no inversion is needed.
func (s FeeSchedule) SenderFee(capacity, amount int64) (int64, error) {
	imbalance, err := s.imbalanceDelta(capacity, amount, false)
	if err != nil {
		return 0, err
	}
	return s.Flat + ppmRound(amount, s.Proportional) + imbalance, nil
}

// ReceiverFee is the fee the edge owner charges for accepting inbound value on
// the channel this schedule belongs to. amountAfterOut is the amount the
// mediator must still hold after this fee, i.e. the forwarded amount plus the
// outgoing edge's fee. The fee depends on the full amount entering the
// mediator, which itself includes this fee, so the flat+proportional part is
// solved by bounded fixed-point refinement. The imbalance term is evaluated
// once, at the crossing amount estimated without it.
func (s FeeSchedule) ReceiverFee(capacity, amountAfterOut int64) (int64, error) {
	fee0 := s.Flat + ppmRound(amountAfterOut, s.Proportional)
	imbalance, err := s.imbalanceDelta(capacity, amountAfterOut+fee0, true)
	if err != nil {
		return 0, err
	}

	x := amountAfterOut + imbalance + fee0
	for i := 0; i < maxFeeIterations; i++ {
		next := amountAfterOut + imbalance + s.Flat + ppmRound(x, s.Proportional)
		if next == x {
			return x - amountAfterOut, nil
		}
		x = next
	}
	return 0, errors.WithStack(errNoFeeConvergence)
}

// imbalanceDelta is the imbalance-penalty difference caused by moving amount
// across an edge with the given pre-transfer capacity. The table is indexed on
// a mirrored axis: the working point for capacity c is lastBreakpoint-c, so
// sending shifts it up and receiving shifts it down. Any working point outside
// the closed breakpoint interval makes the transfer infeasible.
func (s FeeSchedule) imbalanceDelta(capacity, amount int64, receiving bool) (int64, error) {
	if len(s.ImbalancePenalty) == 0 {
		return 0, nil
	}

	working := s.ImbalancePenalty[len(s.ImbalancePenalty)-1].Capacity - capacity
	after := working + amount
	if receiving {
		after = working - amount
	}

	before, err := s.interpolate(working)
	if err != nil {
		return 0, err
	}
	moved, err := s.interpolate(after)
	if err != nil {
		return 0, err
	}
	return moved.Sub(before).Round(0).IntPart(), nil
}

// interpolate evaluates the piecewise-linear penalty table at x.
func (s FeeSchedule) interpolate(x int64) (decimal.Decimal, error) {
	pts := s.ImbalancePenalty
	if x < pts[0].Capacity || x > pts[len(pts)-1].Capacity {
		return decimal.Zero, errors.WithStack(errFeeOutsideDomain)
	}

	// index of the first breakpoint at or above x
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Capacity >= x })
	if pts[i].Capacity == x {
		return decimal.NewFromInt(pts[i].Penalty), nil
	}

	x0, y0 := pts[i-1].Capacity, pts[i-1].Penalty
	x1, y1 := pts[i].Capacity, pts[i].Penalty
	slope := decimal.NewFromInt(y1 - y0).Div(decimal.NewFromInt(x1 - x0))
	return decimal.NewFromInt(y0).Add(slope.Mul(decimal.NewFromInt(x - x0))), nil
}

// ppmRound applies a parts-per-million rate to an amount, rounding half up.
// The product amount*ppm can exceed int64, so it is computed in decimal. The
// result fits: the rate is below one, so |result| < |amount|.
func ppmRound(amount, ppm int64) int64 {
	if ppm == 0 || amount == 0 {
		return 0
	}
	n := decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(ppm)).
		Add(decimal.NewFromInt(ppmDenominator / 2))
	return n.Div(decimal.NewFromInt(ppmDenominator)).Floor().IntPart()
}
