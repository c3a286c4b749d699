package network

import (
	"fmt"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

const (
	artificialFreespeed = 50.0 / 3.6
	artificialCapacity  = 9999
)

// ArtificialLinkFactory creates the links the mapper synthesizes when
// the real network cannot carry a route: zero-length self loops at
// stops in regions of sparse coverage, and direct connections between
// consecutive stop links no mode-legal path joins. All created links
// carry the artificial sentinel mode next to the route's own mode.
//
// Identifier collisions with pre-existing links are resolved with an
// appended counter, keeping id construction a pure function of
// creation order so that repeated runs yield identical networks.
type ArtificialLinkFactory struct {
	net     *Network
	created []string
}

// NewArtificialLinkFactory creates a factory writing into the network.
func NewArtificialLinkFactory(net *Network) *ArtificialLinkFactory {
	return &ArtificialLinkFactory{net: net}
}

// CreatedLinkIDs returns the ids of all links created so far, in
// creation order.
func (f *ArtificialLinkFactory) CreatedLinkIDs() []string {
	return f.created
}

func (f *ArtificialLinkFactory) uniqueLinkID(base string) string {
	if !f.net.HasLink(base) {
		return base
	}
	for i := 1; ; i++ {
		id := fmt.Sprintf("%s_%d", base, i)
		if !f.net.HasLink(id) {
			return id
		}
	}
}

func (f *ArtificialLinkFactory) ensureNode(baseID string, coord types.Coord) *Node {
	if node := f.net.Node(baseID); node != nil {
		if node.Coord == coord {
			return node
		}
		for i := 1; ; i++ {
			id := fmt.Sprintf("%s_%d", baseID, i)
			if node := f.net.Node(id); node == nil {
				created, _ := f.net.AddNode(id, coord)
				return created
			} else if node.Coord == coord {
				return node
			}
		}
	}
	node, _ := f.net.AddNode(baseID, coord)
	return node
}

// CreateStopLoop creates a zero-length self-loop link at the stop
// coordinate, permitting the given mode plus the artificial sentinel.
func (f *ArtificialLinkFactory) CreateStopLoop(stopID string, coord types.Coord, mode string) *Link {
	node := f.ensureNode("pt_"+stopID, coord)
	id := f.uniqueLinkID("pt_" + stopID)
	link, _ := f.net.AddLink(id, node.ID, node.ID, 0, artificialFreespeed, artificialCapacity,
		[]string{mode, ArtificialMode})
	f.created = append(f.created, id)
	return link
}

// CreateConnection creates a direct link between two existing nodes,
// used when no mode-legal path joins two consecutive stop links. The
// link length is the node distance, floored at one meter.
func (f *ArtificialLinkFactory) CreateConnection(from, to *Node, mode string) *Link {
	length := from.Coord.DistanceTo(to.Coord)
	if length < 1 {
		length = 1
	}
	id := f.uniqueLinkID(fmt.Sprintf("%s_%s_art", from.ID, to.ID))
	link, _ := f.net.AddLink(id, from.ID, to.ID, length, artificialFreespeed, artificialCapacity,
		[]string{mode, ArtificialMode})
	f.created = append(f.created, id)
	return link
}
