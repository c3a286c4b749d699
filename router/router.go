package router

import (
	"container/heap"
	"fmt"
	"math"
	"sync"

	"github.com/theoremus-urban-solutions/transit-network-mapper/config"
	"github.com/theoremus-urban-solutions/transit-network-mapper/network"
)

// Router answers least-cost-path queries over the subgraph of links
// permitting at least one of its network modes. A query returns the
// walk from the source link's to-node to the destination link's
// from-node plus the traversal cost of the two endpoint links.
//
// Shortest-path trees are computed per source node and cached; the
// cache is safe for concurrent readers and writers. Ties between
// equal-cost paths break toward the lexicographically lower link id so
// results are deterministic regardless of query order.
type Router struct {
	net    *network.Network
	modes  map[string]struct{}
	policy CostPolicy

	mu    sync.RWMutex
	trees map[string]*shortestPathTree
}

type shortestPathTree struct {
	dist map[string]float64
	prev map[string]*network.Link
}

// New creates a router over the links permitting any of networkModes.
func New(net *network.Network, networkModes []string, policy CostPolicy) *Router {
	modes := make(map[string]struct{}, len(networkModes))
	for _, m := range networkModes {
		modes[m] = struct{}{}
	}
	return &Router{
		net:    net,
		modes:  modes,
		policy: policy,
		trees:  make(map[string]*shortestPathTree),
	}
}

// WithPolicy derives a router sharing the network view but using a
// different cost policy and a fresh cache. Used to bias one route's
// queries toward its shape without polluting the shared cache.
func (r *Router) WithPolicy(policy CostPolicy) *Router {
	return &Router{
		net:    r.net,
		modes:  r.modes,
		policy: policy,
		trees:  make(map[string]*shortestPathTree),
	}
}

func (r *Router) allowed(l *network.Link) bool {
	for m := range r.modes {
		if l.HasMode(m) {
			return true
		}
	}
	return false
}

// LeastCost returns the cost and link walk from src to dst. The walk
// runs from src's to-node to dst's from-node; the returned cost adds
// half the traversal cost of each endpoint link, since a stop anchors
// mid-link: the vehicle leaves src from its stop position and reaches
// dst's stop position, traversing roughly half of either link. An
// infinite cost and nil path mean no mode-legal walk exists.
func (r *Router) LeastCost(src, dst *network.Link) (float64, []*network.Link) {
	tree := r.treeFor(src.To)

	dist, ok := tree.dist[dst.From.ID]
	if !ok {
		return math.Inf(1), nil
	}

	var path []*network.Link
	for node := dst.From; node != src.To; {
		link := tree.prev[node.ID]
		path = append(path, link)
		node = link.From
	}
	// reverse into walk order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return (r.policy.LinkCost(src)+r.policy.LinkCost(dst))/2 + dist, path
}

func (r *Router) treeFor(source *network.Node) *shortestPathTree {
	r.mu.RLock()
	tree, ok := r.trees[source.ID]
	r.mu.RUnlock()
	if ok {
		return tree
	}

	tree = r.dijkstra(source)

	r.mu.Lock()
	if existing, ok := r.trees[source.ID]; ok {
		tree = existing
	} else {
		r.trees[source.ID] = tree
	}
	r.mu.Unlock()
	return tree
}

// dijkstra labels every node reachable from source over the
// mode-restricted subgraph. No link outside the permitted set is
// visited.
func (r *Router) dijkstra(source *network.Node) *shortestPathTree {
	tree := &shortestPathTree{
		dist: map[string]float64{source.ID: 0},
		prev: make(map[string]*network.Link),
	}

	pq := &nodeQueue{{node: source, dist: 0}}
	heap.Init(pq)

	settled := make(map[string]struct{})

	for pq.Len() > 0 {
		current := heap.Pop(pq).(nodeEntry)
		if _, done := settled[current.node.ID]; done {
			continue
		}
		settled[current.node.ID] = struct{}{}

		for _, link := range current.node.OutLinks() {
			if !r.allowed(link) {
				continue
			}
			cost := r.policy.LinkCost(link)
			if math.IsNaN(cost) || cost < 0 {
				continue
			}
			next := link.To
			tentative := current.dist + cost
			known, seen := tree.dist[next.ID]
			switch {
			case !seen || tentative < known:
				tree.dist[next.ID] = tentative
				tree.prev[next.ID] = link
				heap.Push(pq, nodeEntry{node: next, dist: tentative})
			case tentative == known && tree.prev[next.ID] != nil && link.ID < tree.prev[next.ID].ID:
				// deterministic tie-break toward the lower link id
				tree.prev[next.ID] = link
			}
		}
	}

	return tree
}

type nodeEntry struct {
	node *network.Node
	dist float64
}

type nodeQueue []nodeEntry

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node.ID < q[j].node.ID
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x interface{}) {
	*q = append(*q, x.(nodeEntry))
}

func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	entry := old[n-1]
	*q = old[:n-1]
	return entry
}

// Family holds one router per schedule transport mode, keyed by the
// mode routing assignment of the configuration. Routers are created
// once per batch and shared by all workers.
type Family struct {
	routers map[string]*Router
}

// NewFamily builds the per-mode routers for a batch.
func NewFamily(net *network.Network, cfg *config.MapperConfig) (*Family, error) {
	policy, err := PolicyForType(cfg.Mapper.TravelCostType)
	if err != nil {
		return nil, err
	}
	routers := make(map[string]*Router, len(cfg.Mapper.ModeRoutingAssignment))
	for mode, networkModes := range cfg.Mapper.ModeRoutingAssignment {
		routers[mode] = New(net, networkModes, policy)
	}
	return &Family{routers: routers}, nil
}

// ForMode returns the router for a schedule mode.
func (f *Family) ForMode(mode string) (*Router, error) {
	r, ok := f.routers[mode]
	if !ok {
		return nil, fmt.Errorf("no router for schedule mode %q", mode)
	}
	return r, nil
}

// HasMode reports whether a router exists for the schedule mode.
func (f *Family) HasMode(mode string) bool {
	_, ok := f.routers[mode]
	return ok
}

// Policy returns the family's base cost policy.
func (f *Family) Policy() CostPolicy {
	for _, r := range f.routers {
		return r.policy
	}
	return nil
}
