package network

import (
	"bytes"
	"container/heap"
	"context"
	"math"
	"slices"
	"sort"

	"github.com/channelmesh/pathfinder/common"
	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/cockroachdb/errors"
	cstream "github.com/planxnx/concurrent-stream"
	"github.com/samber/lo"
)

const (
	// candidateFactor controls how many shortest-path candidates are
	// generated per requested route. Candidates are ranked by an estimated
	// weight, so extras are needed before exact fees pick the winners.
	candidateFactor = 3

	validationConcurrency = 8
)

// ErrInvalidQuery is returned for path queries that are malformed or address
// nodes the graph has never seen.
var ErrInvalidQuery = errors.Wrap(errs.InvalidArgument, "invalid path query")

// FindPaths returns up to maxPaths feasible routes from source to target for
// the given transfer value, cheapest first. Candidates come from a k-shortest
// path search over estimated edge weights; every candidate is then priced
// exactly and infeasible ones are dropped. Routes are ordered by total fee,
// then by hop count.
func (t *TokenNetwork) FindPaths(ctx context.Context, source, target common.Address, value int64, maxPaths int) ([]Route, error) {
	if value <= 0 {
		return nil, errors.Wrap(ErrInvalidQuery, "transfer value must be positive")
	}
	if maxPaths <= 0 {
		return nil, errors.Wrap(ErrInvalidQuery, "max paths must be positive")
	}
	if source == target {
		return nil, errors.Wrap(ErrInvalidQuery, "source and target must differ")
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.hasNode(source) {
		return nil, errors.Wrapf(ErrInvalidQuery, "unknown source %s", source)
	}
	if !t.hasNode(target) {
		return nil, errors.Wrapf(ErrInvalidQuery, "unknown target %s", target)
	}

	q := searchQuery{t: t, source: source, target: target, value: value}
	candidates := q.kShortest(maxPaths * candidateFactor)
	if len(candidates) == 0 {
		return []Route{}, nil
	}

	out := make(chan *Route, len(candidates))
	stream := cstream.NewStream(ctx, validationConcurrency, out)
	go func() {
		defer close(out)
		_ = stream.Wait()
	}()
	for _, path := range candidates {
		stream.Go(func() *Route {
			route, err := t.unrollFees(path, value)
			if err != nil {
				return nil
			}
			return &route
		})
	}
	stream.Close()

	routes := make([]Route, 0, len(candidates))
	for route := range out {
		if route != nil {
			routes = append(routes, *route)
		}
	}

	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Fee != routes[j].Fee {
			return routes[i].Fee < routes[j].Fee
		}
		return routes[i].HopCount < routes[j].HopCount
	})
	if len(routes) > maxPaths {
		routes = routes[:maxPaths]
	}
	return routes, nil
}

// searchQuery carries the fixed parameters of one path search. All methods
// assume the graph's read lock is held.
type searchQuery struct {
	t              *TokenNetwork
	source, target common.Address
	value          int64
}

type edgeKey struct {
	from, to common.Address
}

// kShortest generates up to limit distinct loop-free paths in ascending
// estimated weight, Yen-style: each accepted path spawns candidates by
// banning one of its edges at a time and rerouting from the spur node.
func (q searchQuery) kShortest(limit int) [][]common.Address {
	first, ok := q.shortestPath(q.source, nil, nil)
	if !ok {
		return nil
	}

	paths := [][]common.Address{first}
	seen := map[string]struct{}{pathKey(first): {}}
	candidates := &candidateHeap{}
	heap.Init(candidates)

	for len(paths) < limit {
		prev := paths[len(paths)-1]
		for i := 0; i < len(prev)-1; i++ {
			spur := prev[i]
			root := prev[:i+1]

			bannedEdges := make(map[edgeKey]struct{})
			for _, p := range paths {
				if len(p) > i+1 && slices.Equal(p[:i+1], root) {
					bannedEdges[edgeKey{p[i], p[i+1]}] = struct{}{}
				}
			}
			bannedNodes := make(map[common.Address]struct{}, i)
			for _, node := range root[:i] {
				bannedNodes[node] = struct{}{}
			}

			tail, ok := q.shortestPath(spur, bannedEdges, bannedNodes)
			if !ok {
				continue
			}

			full := append(slices.Clone(root[:i]), tail...)
			key := pathKey(full)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			heap.Push(candidates, pathCandidate{path: full, weight: q.pathWeight(full), key: key})
		}

		if candidates.Len() == 0 {
			break
		}
		paths = append(paths, heap.Pop(candidates).(pathCandidate).path)
	}
	return paths
}

// shortestPath runs Dijkstra from the given node to the query target over
// admissible edges. Neighbor iteration is ordered so equal-weight searches
// stay deterministic.
func (q searchQuery) shortestPath(from common.Address, bannedEdges map[edgeKey]struct{}, bannedNodes map[common.Address]struct{}) ([]common.Address, bool) {
	dist := map[common.Address]int64{from: 0}
	prev := make(map[common.Address]common.Address)
	done := make(map[common.Address]struct{})

	pq := &nodeQueue{{node: from}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(nodeItem)
		if _, ok := done[item.node]; ok {
			continue
		}
		done[item.node] = struct{}{}
		if item.node == q.target {
			break
		}

		for _, peer := range q.neighbors(item.node) {
			edge := q.t.edges[item.node][peer]
			if !q.admissible(item.node, peer, edge, bannedEdges, bannedNodes) {
				continue
			}
			alt := item.dist + q.edgeWeight(item.node, peer, edge)
			if cur, ok := dist[peer]; !ok || alt < cur {
				dist[peer] = alt
				prev[peer] = item.node
				heap.Push(pq, nodeItem{node: peer, dist: alt})
			}
		}
	}

	if _, ok := done[q.target]; !ok {
		return nil, false
	}

	path := []common.Address{q.target}
	for path[len(path)-1] != from {
		path = append(path, prev[path[len(path)-1]])
	}
	lo.Reverse(path)
	return path, true
}

func (q searchQuery) admissible(u, v common.Address, edge *ChannelEdge, bannedEdges map[edgeKey]struct{}, bannedNodes map[common.Address]struct{}) bool {
	if _, banned := bannedEdges[edgeKey{u, v}]; banned {
		return false
	}
	if _, banned := bannedNodes[v]; banned {
		return false
	}
	if edge.Capacity < q.value {
		return false
	}
	if v != q.target && !q.t.mediatorAllowed(v) {
		return false
	}
	return true
}

// edgeWeight estimates the cost of routing the queried value over one edge:
// one unit per hop plus the mediation fees charged around it, evaluated at
// the requested value since the exact crossing amount is unknown up front.
// Estimates that fail or come out negative clamp to zero so Dijkstra's
// invariants hold; the exact unroll decides feasibility later.
func (q searchQuery) edgeWeight(u, v common.Address, out *ChannelEdge) int64 {
	var est int64
	if u != q.source {
		if fee, err := out.Schedule.SenderFee(out.Capacity, q.value); err == nil {
			est += fee
		}
	}
	if v != q.target {
		if in, ok := q.t.edges[v][u]; ok {
			est += in.Schedule.Flat + ppmRound(q.value, in.Schedule.Proportional)
		}
	}
	if est < 0 {
		est = 0
	}
	return 1 + est
}

func (q searchQuery) pathWeight(path []common.Address) int64 {
	var total int64
	for i := 0; i < len(path)-1; i++ {
		edge, ok := q.t.edges[path[i]][path[i+1]]
		if !ok {
			return math.MaxInt64
		}
		total += q.edgeWeight(path[i], path[i+1], edge)
	}
	return total
}

func (q searchQuery) neighbors(node common.Address) []common.Address {
	peers := lo.Keys(q.t.edges[node])
	sort.Slice(peers, func(i, j int) bool { return bytes.Compare(peers[i][:], peers[j][:]) < 0 })
	return peers
}

func pathKey(path []common.Address) string {
	b := make([]byte, 0, len(path)*common.AddressLength)
	for _, node := range path {
		b = append(b, node[:]...)
	}
	return string(b)
}

type nodeItem struct {
	node common.Address
	dist int64
}

type nodeQueue []nodeItem

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return bytes.Compare(q[i].node[:], q[j].node[:]) < 0
}
func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)   { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

type pathCandidate struct {
	path   []common.Address
	weight int64
	key    string
}

type candidateHeap []pathCandidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	if len(h[i].path) != len(h[j].path) {
		return len(h[i].path) < len(h[j].path)
	}
	return h[i].key < h[j].key
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)   { *h = append(*h, x.(pathCandidate)) }
func (h *candidateHeap) Pop() any {
	old := *h
	item := old[len(old)-1]
	*h = old[:len(old)-1]
	return item
}
