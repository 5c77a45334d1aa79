package pathfinding

import (
	"context"

	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/channelmesh/pathfinder/core/types"
	"github.com/channelmesh/pathfinder/modules/pathfinding/network"
	"github.com/channelmesh/pathfinder/pkg/logger"
	"github.com/channelmesh/pathfinder/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Processor applies network state events to the channel graph. Events that
// fail validation are logged and dropped: a bad or stale observation must
// never take the query side down.
type Processor struct {
	graph *network.TokenNetwork
}

func NewProcessor(graph *network.TokenNetwork) *Processor {
	return &Processor{
		graph: graph,
	}
}

func (p *Processor) Name() string {
	return "pathfinding"
}

func (p *Processor) Process(ctx context.Context, events []types.Event) error {
	for _, event := range events {
		if err := p.apply(event); err != nil {
			logger.WarnContext(ctx, "Dropped event",
				slogx.String("event", event.EventName()),
				slogx.Error(err),
			)
		}
	}
	return nil
}

func (p *Processor) Shutdown(ctx context.Context) error {
	return nil
}

func (p *Processor) apply(event types.Event) error {
	switch e := event.(type) {
	case types.ChannelOpened:
		return p.graph.OpenChannel(e.ChannelID, e.ParticipantA, e.ParticipantB, e.SettleTimeout, e.CapacityA, e.CapacityB)
	case types.ChannelCapacityChanged:
		return p.graph.UpdateCapacity(e.ChannelID, e.Participant, e.NewCapacity)
	case types.FeeUpdate:
		schedule := network.FeeSchedule{
			Flat:         e.Flat,
			Proportional: e.Proportional,
			ImbalancePenalty: lo.Map(e.ImbalancePenalty, func(pt [2]int64, _ int) network.PenaltyPoint {
				return network.PenaltyPoint{Capacity: pt[0], Penalty: pt[1]}
			}),
		}
		return p.graph.UpdateFeeSchedule(e.ChannelID, e.Participant, schedule, e.DeclaredAt)
	case types.ChannelClosed:
		p.graph.CloseChannel(e.ChannelID)
		return nil
	case types.ReachabilityChanged:
		status, err := parseReachability(e.Status)
		if err != nil {
			return err
		}
		p.graph.SetReachability(e.Node, status)
		return nil
	default:
		return errors.Wrapf(errs.Unsupported, "unsupported event %q", event.EventName())
	}
}

func parseReachability(status string) (network.Reachability, error) {
	switch network.Reachability(status) {
	case network.ReachabilityReachable, network.ReachabilityUnreachable, network.ReachabilityUnknown:
		return network.Reachability(status), nil
	default:
		return "", errors.Wrapf(errs.InvalidArgument, "unknown reachability status %q", status)
	}
}
