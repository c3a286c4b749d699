package mapper

import (
	"github.com/theoremus-urban-solutions/transit-network-mapper/network"
	"github.com/theoremus-urban-solutions/transit-network-mapper/schedule"
)

// commit is the single-threaded commit phase: it walks the solutions
// in deterministic task order and materializes each mapped route into
// the shared schedule and network. Routes that could not be solved are
// removed from the output schedule.
func (b *batch) commit(solutions []*routeSolution) {
	for _, sol := range solutions {
		if sol == nil {
			continue
		}
		switch sol.status {
		case StatusMapped:
			b.commitRoute(sol)
		default:
			b.schedule.Line(sol.lineID).RemoveRoute(sol.routeID)
		}
	}

	// drop lines left without routes
	for _, lineID := range b.schedule.LineIDs() {
		if len(b.schedule.Line(lineID).RouteIDs()) == 0 {
			b.schedule.RemoveLine(lineID)
		}
	}
}

// commitRoute binds every stop of the route to its chosen link via a
// child stop facility and assembles the route's link sequence.
func (b *batch) commitRoute(sol *routeSolution) {
	route := sol.route

	// resolve the concrete link of every chosen candidate; artificial
	// candidates materialize as self-loop links here
	links := make([]*network.Link, len(sol.chosen))
	for i, c := range sol.chosen {
		if c.Artificial {
			links[i] = b.stopLoopFor(c.Facility, route.Mode)
		} else {
			links[i] = c.Link
		}
	}

	// child stop facilities, keyed by (parent id, link id)
	for i, stop := range route.Stops {
		parentID := schedule.ParentFacilityID(stop.Facility.ID)
		childID := schedule.ChildFacilityID(parentID, links[i].ID)
		child := b.schedule.Facility(childID)
		if child == nil {
			child = &schedule.StopFacility{
				ID:         childID,
				Coord:      stop.Facility.Coord,
				Name:       stop.Facility.Name,
				IsBlocking: stop.Facility.IsBlocking,
				RefLinkID:  links[i].ID,
			}
			b.schedule.AddFacility(child) //nolint:errcheck // id absence checked above
		}
		stop.Facility = child
	}

	// link sequence: chosen link of the first stop, then per pair the
	// inter-stop walk followed by the next chosen link
	sequence := []*network.Link{links[0]}
	for i := 0; i < len(links)-1; i++ {
		// travelled holds the links traversed between the two stops,
		// including both stop links
		var travelled []*network.Link
		if links[i] != links[i+1] {
			travelled = append(travelled, links[i])
			segment := sol.segments[i]
			if segment == nil {
				// no mode-legal path; bridge with an artificial connection
				if links[i].To != links[i+1].From {
					travelled = append(travelled, b.connectionFor(links[i].To, links[i+1].From, route.Mode))
				}
			} else {
				travelled = append(travelled, segment...)
			}
			travelled = append(travelled, links[i+1])
			sequence = append(sequence, travelled[1:]...)
		}
		b.recordFreespeedRequirement(route, i, travelled)
	}

	route.Links = collapseLinkIDs(sequence)
}

// collapseLinkIDs renders the sequence as link ids, collapsing
// consecutive repetitions of the same link.
func collapseLinkIDs(sequence []*network.Link) []string {
	ids := make([]string, 0, len(sequence))
	for _, l := range sequence {
		if len(ids) > 0 && ids[len(ids)-1] == l.ID {
			continue
		}
		ids = append(ids, l.ID)
	}
	return ids
}

// stopLoopFor returns the artificial self-loop link of a stop
// facility, creating it on first use. Routes of different modes share
// one loop per stop; the mode set extends as needed.
func (b *batch) stopLoopFor(facility *schedule.StopFacility, mode string) *network.Link {
	parentID := schedule.ParentFacilityID(facility.ID)
	if link, ok := b.stopLoops[parentID]; ok {
		link.AddMode(mode)
		return link
	}
	link := b.factory.CreateStopLoop(parentID, facility.Coord, mode)
	b.log.ArtificialLinkCreated(link.ID, parentID)
	b.stopLoops[parentID] = link
	return link
}

// connectionFor returns the artificial connection link between two
// nodes, creating it on first use.
func (b *batch) connectionFor(from, to *network.Node, mode string) *network.Link {
	key := from.ID + "\x00" + to.ID
	if link, ok := b.connections[key]; ok {
		link.AddMode(mode)
		return link
	}
	link := b.factory.CreateConnection(from, to, mode)
	b.log.ArtificialLinkCreated(link.ID, from.ID+"->"+to.ID)
	b.connections[key] = link
	return link
}

// recordFreespeedRequirement notes the minimum freespeed the segment
// between stops i and i+1 demands from its schedule-freespeed links.
// The scheduled duration is apportioned over the segment by link
// length, so the per-link target is segment length over duration.
func (b *batch) recordFreespeedRequirement(route *schedule.Route, i int, travelled []*network.Link) {
	if len(travelled) == 0 {
		return
	}
	depart := route.Stops[i].DepartureOffset
	arrive := route.Stops[i+1].ArrivalOffset
	if depart < 0 || arrive < 0 || arrive <= depart {
		return
	}
	duration := arrive - depart

	segmentLength := 0.0
	for _, l := range travelled {
		segmentLength += l.Length
	}
	if segmentLength <= 0 {
		return
	}
	target := segmentLength / duration

	for _, l := range travelled {
		if !b.hasScheduleFreespeedMode(l) {
			continue
		}
		if target > b.freespeedReq[l.ID] {
			b.freespeedReq[l.ID] = target
		}
	}
}

func (b *batch) hasScheduleFreespeedMode(l *network.Link) bool {
	for _, mode := range b.cfg.Mapper.ScheduleFreespeedModes {
		if l.HasMode(mode) {
			return true
		}
	}
	return false
}
