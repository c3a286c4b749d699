package mapper

import (
	"sort"

	"github.com/theoremus-urban-solutions/transit-network-mapper/network"
)

// finalize cleans the network and schedule after all routes are
// committed: unused artificial constructs go, the artificial sentinel
// mode is stripped, freespeeds rise to meet schedule timings, and —
// when configured — unreachable network parts and unused stop
// facilities are pruned.
func (b *batch) finalize() {
	used := b.linksInUse()

	b.dropUnusedArtificialLinks(used)
	b.net.StripMode(network.ArtificialMode)
	b.applyFreespeedRequirements()

	if b.cfg.Mapper.PruneUnreachableNetwork {
		b.pruneUnreachable(used)
	}
	if b.cfg.Mapper.RemoveNotUsedStopFacilities {
		removed := b.schedule.RemoveUnusedFacilities()
		if len(removed) > 0 {
			b.log.Debug("Removed unused stop facilities", "count", len(removed))
		}
	}
}

// linksInUse returns the ids of all links appearing in any final
// route's link sequence.
func (b *batch) linksInUse() map[string]struct{} {
	used := make(map[string]struct{})
	for _, line := range b.schedule.Lines() {
		for _, route := range line.Routes() {
			for _, id := range route.Links {
				used[id] = struct{}{}
			}
		}
	}
	return used
}

// dropUnusedArtificialLinks removes every artificial link no route
// traverses, together with end nodes left without any link.
func (b *batch) dropUnusedArtificialLinks(used map[string]struct{}) {
	for _, id := range b.net.LinkIDs() {
		link := b.net.Link(id)
		if !link.IsArtificial() {
			continue
		}
		if _, ok := used[id]; ok {
			continue
		}
		from, to := link.From, link.To
		b.net.RemoveLink(id)
		for _, node := range []*network.Node{from, to} {
			if len(node.OutLinks()) == 0 && len(node.InLinks()) == 0 {
				b.net.RemoveNode(node.ID)
			}
		}
	}
}

// applyFreespeedRequirements raises freespeeds on schedule-freespeed
// links so the scheduled inter-stop travel times are achievable.
// Freespeed is never lowered.
func (b *batch) applyFreespeedRequirements() {
	ids := make([]string, 0, len(b.freespeedReq))
	for id := range b.freespeedReq {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		link := b.net.Link(id)
		if link == nil {
			continue
		}
		target := b.freespeedReq[id]
		if target > link.Freespeed {
			b.log.FreespeedRaised(id, link.Freespeed, target)
			link.RaiseFreespeed(target)
		}
	}
}

// pruneUnreachable removes nodes and links not reachable from any
// schedule-used link, treating links as undirected for reachability.
func (b *batch) pruneUnreachable(used map[string]struct{}) {
	reachable := make(map[string]struct{})
	var frontier []*network.Node

	visit := func(n *network.Node) {
		if _, ok := reachable[n.ID]; !ok {
			reachable[n.ID] = struct{}{}
			frontier = append(frontier, n)
		}
	}

	for id := range used {
		if link := b.net.Link(id); link != nil {
			visit(link.From)
			visit(link.To)
		}
	}

	for len(frontier) > 0 {
		node := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, l := range node.OutLinks() {
			visit(l.To)
		}
		for _, l := range node.InLinks() {
			visit(l.From)
		}
	}

	for _, id := range b.net.NodeIDs() {
		if _, ok := reachable[id]; !ok {
			b.net.RemoveNode(id)
		}
	}
}
