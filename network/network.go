// Package network holds the directed multigraph the mapper routes on:
// nodes with coordinates and links with length, freespeed, capacity and
// a permitted-mode set. Links are immutable once added except for two
// append-only mutations: modes may be added and freespeed may be
// raised to satisfy a schedule constraint.
package network

import (
	"fmt"
	"sort"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// ArtificialMode is the sentinel mode tag carried by links the mapper
// synthesizes where the real network lacks coverage. The finalizer
// strips the tag (or the whole link) before the network is emitted.
const ArtificialMode = "artificial"

// Node is a network vertex.
type Node struct {
	ID    string
	Coord types.Coord

	outLinks []*Link
	inLinks  []*Link
}

// OutLinks returns the links leaving this node, ordered by link id.
func (n *Node) OutLinks() []*Link {
	return n.outLinks
}

// InLinks returns the links entering this node, ordered by link id.
func (n *Node) InLinks() []*Link {
	return n.inLinks
}

// Link is a directed network edge.
type Link struct {
	ID        string
	From      *Node
	To        *Node
	Length    float64
	Freespeed float64
	Capacity  float64
	NumLanes  float64

	modes map[string]struct{}
}

// HasMode reports whether the link permits the given travel mode.
func (l *Link) HasMode(mode string) bool {
	_, ok := l.modes[mode]
	return ok
}

// Modes returns the permitted modes in sorted order.
func (l *Link) Modes() []string {
	modes := make([]string, 0, len(l.modes))
	for m := range l.modes {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// AddMode extends the permitted-mode set. Modes are never removed
// except for the artificial sentinel, which the finalizer clears.
func (l *Link) AddMode(mode string) {
	l.modes[mode] = struct{}{}
}

func (l *Link) removeMode(mode string) {
	delete(l.modes, mode)
}

// RaiseFreespeed raises the link freespeed to at least v. Freespeed is
// never lowered.
func (l *Link) RaiseFreespeed(v float64) {
	if v > l.Freespeed {
		l.Freespeed = v
	}
}

// IsLoop reports whether the link starts and ends at the same node.
func (l *Link) IsLoop() bool {
	return l.From == l.To
}

// IsArtificial reports whether the link carries the artificial sentinel mode.
func (l *Link) IsArtificial() bool {
	return l.HasMode(ArtificialMode)
}

// TravelTime returns the freespeed travel time over the link.
func (l *Link) TravelTime() float64 {
	if l.Freespeed <= 0 {
		return 0
	}
	return l.Length / l.Freespeed
}

// Center returns the midpoint between the link's end nodes.
func (l *Link) Center() types.Coord {
	return types.Coord{
		X: (l.From.Coord.X + l.To.Coord.X) / 2,
		Y: (l.From.Coord.Y + l.To.Coord.Y) / 2,
	}
}

// Network is a directed multigraph of nodes and links. Identifiers are
// opaque strings unique within their kind.
type Network struct {
	Name string

	nodes map[string]*Node
	links map[string]*Link
}

// New creates an empty network.
func New(name string) *Network {
	return &Network{
		Name:  name,
		nodes: make(map[string]*Node),
		links: make(map[string]*Link),
	}
}

// AddNode inserts a node. Inserting a duplicate id is an error.
func (n *Network) AddNode(id string, coord types.Coord) (*Node, error) {
	if _, exists := n.nodes[id]; exists {
		return nil, fmt.Errorf("duplicate node id %q", id)
	}
	node := &Node{ID: id, Coord: coord}
	n.nodes[id] = node
	return node, nil
}

// AddLink inserts a link between two existing nodes.
func (n *Network) AddLink(id, fromID, toID string, length, freespeed, capacity float64, modes []string) (*Link, error) {
	if _, exists := n.links[id]; exists {
		return nil, fmt.Errorf("duplicate link id %q", id)
	}
	from, ok := n.nodes[fromID]
	if !ok {
		return nil, fmt.Errorf("link %q references unknown node %q", id, fromID)
	}
	to, ok := n.nodes[toID]
	if !ok {
		return nil, fmt.Errorf("link %q references unknown node %q", id, toID)
	}
	link := &Link{
		ID:        id,
		From:      from,
		To:        to,
		Length:    length,
		Freespeed: freespeed,
		Capacity:  capacity,
		NumLanes:  1,
		modes:     make(map[string]struct{}, len(modes)),
	}
	for _, m := range modes {
		link.modes[m] = struct{}{}
	}
	n.links[id] = link
	insertSorted(&from.outLinks, link)
	insertSorted(&to.inLinks, link)
	return link, nil
}

func insertSorted(links *[]*Link, link *Link) {
	i := sort.Search(len(*links), func(i int) bool { return (*links)[i].ID >= link.ID })
	*links = append(*links, nil)
	copy((*links)[i+1:], (*links)[i:])
	(*links)[i] = link
}

func removeLinkFrom(links *[]*Link, link *Link) {
	for i, l := range *links {
		if l == link {
			*links = append((*links)[:i], (*links)[i+1:]...)
			return
		}
	}
}

// Node returns the node with the given id, or nil.
func (n *Network) Node(id string) *Node {
	return n.nodes[id]
}

// Link returns the link with the given id, or nil.
func (n *Network) Link(id string) *Link {
	return n.links[id]
}

// HasLink reports whether a link with the given id exists.
func (n *Network) HasLink(id string) bool {
	_, ok := n.links[id]
	return ok
}

// NumNodes returns the node count.
func (n *Network) NumNodes() int { return len(n.nodes) }

// NumLinks returns the link count.
func (n *Network) NumLinks() int { return len(n.links) }

// NodeIDs returns all node ids in sorted order.
func (n *Network) NodeIDs() []string {
	ids := make([]string, 0, len(n.nodes))
	for id := range n.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LinkIDs returns all link ids in sorted order.
func (n *Network) LinkIDs() []string {
	ids := make([]string, 0, len(n.links))
	for id := range n.links {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RemoveLink deletes a link and detaches it from its end nodes.
func (n *Network) RemoveLink(id string) {
	link, ok := n.links[id]
	if !ok {
		return
	}
	removeLinkFrom(&link.From.outLinks, link)
	removeLinkFrom(&link.To.inLinks, link)
	delete(n.links, id)
}

// RemoveNode deletes a node and all links attached to it.
func (n *Network) RemoveNode(id string) {
	node, ok := n.nodes[id]
	if !ok {
		return
	}
	for _, l := range append([]*Link{}, node.outLinks...) {
		n.RemoveLink(l.ID)
	}
	for _, l := range append([]*Link{}, node.inLinks...) {
		n.RemoveLink(l.ID)
	}
	delete(n.nodes, id)
}

// StripMode removes a mode tag from every link that carries it.
func (n *Network) StripMode(mode string) {
	for _, l := range n.links {
		l.removeMode(mode)
	}
}

// FilterByModes returns a copy of the network containing only links
// permitting at least one of the given modes, and the nodes those
// links touch. Used to emit a street-only subset next to the mapped
// multimodal network.
func (n *Network) FilterByModes(modes []string) *Network {
	out := New(n.Name)
	wanted := make(map[string]struct{}, len(modes))
	for _, m := range modes {
		wanted[m] = struct{}{}
	}
	for _, id := range n.LinkIDs() {
		link := n.links[id]
		keep := false
		for m := range wanted {
			if link.HasMode(m) {
				keep = true
				break
			}
		}
		if !keep {
			continue
		}
		if out.Node(link.From.ID) == nil {
			out.AddNode(link.From.ID, link.From.Coord) //nolint:errcheck // fresh network, ids unique
		}
		if out.Node(link.To.ID) == nil {
			out.AddNode(link.To.ID, link.To.Coord) //nolint:errcheck
		}
		copied, _ := out.AddLink(link.ID, link.From.ID, link.To.ID, link.Length, link.Freespeed, link.Capacity, link.Modes())
		copied.NumLanes = link.NumLanes
	}
	return out
}
