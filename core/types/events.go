package types

import (
	"time"

	"github.com/channelmesh/pathfinder/common"
)

// Event is a network state change observed by a datasource. Payloads are raw
// observations; validation happens when they are applied to the graph.
type Event interface {
	// EventName identifies the event type for logging and dispatch.
	EventName() string
}

// ChannelOpened announces a new channel between two participants.
type ChannelOpened struct {
	ChannelID     common.ChannelID `json:"channel_id"`
	ParticipantA  common.Address   `json:"participant_a"`
	ParticipantB  common.Address   `json:"participant_b"`
	SettleTimeout int64            `json:"settle_timeout"`
	CapacityA     int64            `json:"capacity_a"`
	CapacityB     int64            `json:"capacity_b"`
}

func (ChannelOpened) EventName() string { return "channel_opened" }

// ChannelCapacityChanged carries a fresh sendable capacity for one
// participant's side of a channel.
type ChannelCapacityChanged struct {
	ChannelID   common.ChannelID `json:"channel_id"`
	Participant common.Address   `json:"participant"`
	NewCapacity int64            `json:"new_capacity"`
}

func (ChannelCapacityChanged) EventName() string { return "channel_capacity_changed" }

// FeeUpdate is a participant's declaration of the fee schedule on its side of
// a channel. DeclaredAt orders declarations so late delivery cannot roll an
// edge back to an older schedule.
type FeeUpdate struct {
	ChannelID        common.ChannelID `json:"channel_id"`
	Participant      common.Address   `json:"participant"`
	Flat             int64            `json:"flat"`
	Proportional     int64            `json:"proportional"`
	ImbalancePenalty [][2]int64       `json:"imbalance_penalty,omitempty"`
	DeclaredAt       time.Time        `json:"declared_at"`
}

func (FeeUpdate) EventName() string { return "fee_update" }

// ChannelClosed announces that a channel has left the network.
type ChannelClosed struct {
	ChannelID common.ChannelID `json:"channel_id"`
}

func (ChannelClosed) EventName() string { return "channel_closed" }

// ReachabilityChanged carries a presence transition for a participant.
type ReachabilityChanged struct {
	Node   common.Address `json:"node"`
	Status string         `json:"status"`
}

func (ReachabilityChanged) EventName() string { return "reachability_changed" }
