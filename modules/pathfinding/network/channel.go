package network

import (
	"time"

	"github.com/channelmesh/pathfinder/common"
)

// ChannelEdge is one directional view of a payment channel: the capacity the
// owner can still send towards the peer, and the fee schedule the owner
// charges on this direction.
type ChannelEdge struct {
	ChannelID     common.ChannelID
	Owner         common.Address
	Peer          common.Address
	Capacity      int64
	SettleTimeout int64
	Schedule      FeeSchedule

	// feeUpdatedAt is the declaration timestamp of the last applied fee
	// schedule. Older updates arriving afterwards are dropped.
	feeUpdatedAt time.Time
}

// Reachability is the presence status of a network participant as reported by
// the presence feed.
type Reachability string

const (
	ReachabilityUnknown     Reachability = "unknown"
	ReachabilityReachable   Reachability = "reachable"
	ReachabilityUnreachable Reachability = "unreachable"
)
