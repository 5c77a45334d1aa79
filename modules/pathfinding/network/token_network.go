package network

import (
	"sync"
	"time"

	"github.com/channelmesh/pathfinder/common"
	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/cockroachdb/errors"
)

var (
	// ErrDuplicateChannel is returned when opening a channel whose identifier
	// is already present in the graph.
	ErrDuplicateChannel = errors.Wrap(errs.Conflict, "channel already exists")

	// ErrUnknownChannel is returned for updates addressing a channel the
	// graph has never seen or has already removed.
	ErrUnknownChannel = errors.Wrap(errs.NotFound, "unknown channel")

	// ErrUnauthorizedFeeUpdate is returned when a fee schedule is declared by
	// an address that is not a participant of the channel.
	ErrUnauthorizedFeeUpdate = errors.Wrap(errs.Unauthorized, "fee update sender is not a channel participant")

	// ErrStaleFeeUpdate is returned when a fee schedule carries a declaration
	// timestamp not newer than the one already applied to the edge.
	ErrStaleFeeUpdate = errors.Wrap(errs.Conflict, "fee update is older than the applied schedule")
)

// TokenNetwork is the in-memory channel graph for a single token. It is safe
// for concurrent use: mutations take the write lock, path queries share the
// read lock.
type TokenNetwork struct {
	mu sync.RWMutex

	// edges holds both directional views of every open channel, keyed by
	// owner then peer. At most one channel per address pair.
	edges        map[common.Address]map[common.Address]*ChannelEdge
	channels     map[common.ChannelID][2]common.Address
	reachability map[common.Address]Reachability
}

// Stats is a point-in-time summary of the graph.
type Stats struct {
	Channels int `json:"channels"`
	Nodes    int `json:"nodes"`
}

func NewTokenNetwork() *TokenNetwork {
	return &TokenNetwork{
		edges:        make(map[common.Address]map[common.Address]*ChannelEdge),
		channels:     make(map[common.ChannelID][2]common.Address),
		reachability: make(map[common.Address]Reachability),
	}
}

// OpenChannel registers a new channel between two participants, creating one
// directional edge per participant with a zero fee schedule.
func (t *TokenNetwork) OpenChannel(id common.ChannelID, a, b common.Address, settleTimeout, capacityA, capacityB int64) error {
	if a == b {
		return errors.Wrap(errs.InvalidArgument, "channel participants must differ")
	}
	if capacityA < 0 || capacityB < 0 {
		return errors.Wrap(errs.InvalidArgument, "channel capacity must not be negative")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.channels[id]; ok {
		return errors.WithStack(ErrDuplicateChannel)
	}
	if _, ok := t.edges[a][b]; ok {
		return errors.WithStack(ErrDuplicateChannel)
	}

	t.channels[id] = [2]common.Address{a, b}
	t.putEdge(&ChannelEdge{ChannelID: id, Owner: a, Peer: b, Capacity: capacityA, SettleTimeout: settleTimeout})
	t.putEdge(&ChannelEdge{ChannelID: id, Owner: b, Peer: a, Capacity: capacityB, SettleTimeout: settleTimeout})
	return nil
}

// UpdateCapacity replaces the sendable capacity of one participant's
// directional edge.
func (t *TokenNetwork) UpdateCapacity(id common.ChannelID, participant common.Address, capacity int64) error {
	if capacity < 0 {
		return errors.Wrap(errs.InvalidArgument, "channel capacity must not be negative")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	edge, err := t.participantEdge(id, participant)
	if err != nil {
		return err
	}
	edge.Capacity = capacity
	return nil
}

// UpdateFeeSchedule applies a fee declaration to the declaring participant's
// directional edge. Declarations not strictly newer than the applied one are
// rejected with ErrStaleFeeUpdate so out-of-order or replayed delivery cannot
// roll fees back.
func (t *TokenNetwork) UpdateFeeSchedule(id common.ChannelID, participant common.Address, schedule FeeSchedule, declaredAt time.Time) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	pair, ok := t.channels[id]
	if !ok {
		return errors.WithStack(ErrUnknownChannel)
	}
	if participant != pair[0] && participant != pair[1] {
		return errors.WithStack(ErrUnauthorizedFeeUpdate)
	}

	edge := t.edges[participant][t.counterparty(pair, participant)]
	if !declaredAt.After(edge.feeUpdatedAt) {
		return errors.WithStack(ErrStaleFeeUpdate)
	}
	edge.Schedule = schedule
	edge.feeUpdatedAt = declaredAt
	return nil
}

// CloseChannel removes both directional edges of a channel. Closing a channel
// that is not in the graph is a no-op, so close events can be replayed.
func (t *TokenNetwork) CloseChannel(id common.ChannelID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pair, ok := t.channels[id]
	if !ok {
		return
	}
	delete(t.channels, id)
	t.deleteEdge(pair[0], pair[1])
	t.deleteEdge(pair[1], pair[0])
}

// SetReachability records the presence status of a participant. Participants
// reported unreachable are skipped as mediators by path queries.
func (t *TokenNetwork) SetReachability(node common.Address, status Reachability) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if status == ReachabilityUnknown {
		delete(t.reachability, node)
		return
	}
	t.reachability[node] = status
}

// hasNode reports whether the address owns at least one open channel edge.
// Query-path callers hold the read lock already.
func (t *TokenNetwork) hasNode(node common.Address) bool {
	return len(t.edges[node]) > 0
}

// Stats summarizes the current graph size.
func (t *TokenNetwork) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Stats{Channels: len(t.channels), Nodes: len(t.edges)}
}

func (t *TokenNetwork) putEdge(edge *ChannelEdge) {
	peers, ok := t.edges[edge.Owner]
	if !ok {
		peers = make(map[common.Address]*ChannelEdge)
		t.edges[edge.Owner] = peers
	}
	peers[edge.Peer] = edge
}

func (t *TokenNetwork) deleteEdge(owner, peer common.Address) {
	delete(t.edges[owner], peer)
	if len(t.edges[owner]) == 0 {
		delete(t.edges, owner)
	}
}

func (t *TokenNetwork) participantEdge(id common.ChannelID, participant common.Address) (*ChannelEdge, error) {
	pair, ok := t.channels[id]
	if !ok {
		return nil, errors.WithStack(ErrUnknownChannel)
	}
	if participant != pair[0] && participant != pair[1] {
		return nil, errors.Wrap(errs.InvalidArgument, "participant does not belong to channel")
	}
	return t.edges[participant][t.counterparty(pair, participant)], nil
}

func (t *TokenNetwork) counterparty(pair [2]common.Address, participant common.Address) common.Address {
	if participant == pair[0] {
		return pair[1]
	}
	return pair[0]
}

// mediatorAllowed reports whether a node may appear strictly between source
// and target on a route.
func (t *TokenNetwork) mediatorAllowed(node common.Address) bool {
	return t.reachability[node] != ReachabilityUnreachable
}
