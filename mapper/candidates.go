package mapper

import (
	"math"

	"github.com/theoremus-urban-solutions/transit-network-mapper/config"
	"github.com/theoremus-urban-solutions/transit-network-mapper/geometry"
	"github.com/theoremus-urban-solutions/transit-network-mapper/network"
	"github.com/theoremus-urban-solutions/transit-network-mapper/schedule"
)

// artificialLinkPenalty is the stop-attachment penalty constant added
// for artificial candidates. It dwarfs any realistic path cost, so the
// solver only resorts to an artificial link when no combination of
// real candidates connects the route.
const artificialLinkPenalty = 1e6

// artificialConnectionFactor scales the beeline distance between two
// stops into the edge weight used when no mode-legal path joins their
// candidates. Kept well above 1 so real paths win whenever they exist.
const artificialConnectionFactor = 5.0

// candidateDistanceCostFactor scales the squared stop-to-link distance
// into the stop-attachment penalty. Quadratic growth keeps nearby
// candidates cheap while making a distant candidate quickly more
// expensive than an honest detour over extra links.
const candidateDistanceCostFactor = 0.1

// directionTolerance is the maximum angle in radians between the
// travel direction at a stop and a candidate link's azimuth. At π/2
// inclusive, a link pointing against the travel direction is excluded
// while both orientations of a perpendicular pair stay in, leaving
// genuinely ambiguous geometry to the solver.
const directionTolerance = math.Pi / 2

// LinkCandidate proposes a network link as the physical anchor of a
// transit stop on a specific route. Candidates are immutable once
// produced. An artificial candidate has no link yet; the materializer
// creates the self-loop when a route commits to it.
type LinkCandidate struct {
	Facility   *schedule.StopFacility
	Link       *network.Link
	Distance   float64
	Artificial bool
}

// candidateGenerator produces the ordered candidate set of one stop on
// the subgraph legal for a route's transport mode. It reads only the
// shared spatial index and is safe for concurrent use.
type candidateGenerator struct {
	index    *network.SpatialIndex
	settings *config.MapperSettings
}

// generate returns up to maxNClosestLinks candidates within the search
// radius, ordered by ascending stop-to-link distance with ties broken
// by link id. The radius doubles up to the configured maximum while
// fewer than nLinkThreshold candidates are found. When no usable link
// lies within the maximum expanded radius, a single artificial
// placeholder is returned if artificial links are enabled, otherwise nil.
//
// travelAzimuth is the route's direction of travel at the stop, in
// radians clockwise from north; links pointing against it are not
// candidates. NaN means the direction is ambiguous and both
// orientations of every link are emitted for the solver to decide.
func (g *candidateGenerator) generate(facility *schedule.StopFacility, networkModes map[string]struct{}, travelAzimuth float64) []*LinkCandidate {
	radius := g.settings.MaxLinkCandidateDistance

	var matches []network.LinkDistance
	for {
		matches = g.filter(g.index.LinksWithinDistance(facility.Coord, radius), networkModes, travelAzimuth)
		if len(matches) >= g.settings.NLinkThreshold || radius >= g.settings.MaxExpandedRadius {
			break
		}
		radius *= 2
		if radius > g.settings.MaxExpandedRadius {
			radius = g.settings.MaxExpandedRadius
		}
	}

	if len(matches) == 0 {
		if !g.settings.UseArtificialLinks {
			return nil
		}
		return []*LinkCandidate{{Facility: facility, Artificial: true}}
	}

	if len(matches) > g.settings.MaxNClosestLinks {
		matches = matches[:g.settings.MaxNClosestLinks]
	}

	candidates := make([]*LinkCandidate, len(matches))
	for i, m := range matches {
		candidates[i] = &LinkCandidate{
			Facility: facility,
			Link:     m.Link,
			Distance: m.Distance,
		}
	}
	return candidates
}

func (g *candidateGenerator) filter(matches []network.LinkDistance, networkModes map[string]struct{}, travelAzimuth float64) []network.LinkDistance {
	filtered := matches[:0:0]
	for _, m := range matches {
		if m.Link.IsLoop() && !g.settings.AllowLoopLinks {
			continue
		}
		linkAzimuth := geometry.Azimuth(m.Link.From.Coord, m.Link.To.Coord)
		if !geometry.AzimuthAgrees(linkAzimuth, travelAzimuth, directionTolerance) {
			continue
		}
		permitted := false
		for mode := range networkModes {
			if m.Link.HasMode(mode) {
				permitted = true
				break
			}
		}
		if permitted {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// travelAzimuths estimates the route's direction of travel at every
// stop from the surrounding stop coordinates: first towards second at
// the start, previous towards next at interior stops, second-to-last
// towards last at the end. A single-stop route, or coincident
// neighbours, yield NaN (no direction signal).
func travelAzimuths(stops []*schedule.RouteStop) []float64 {
	azimuths := make([]float64, len(stops))
	if len(stops) < 2 {
		for i := range azimuths {
			azimuths[i] = math.NaN()
		}
		return azimuths
	}
	for i := range stops {
		switch i {
		case 0:
			azimuths[i] = geometry.Azimuth(stops[0].Facility.Coord, stops[1].Facility.Coord)
		case len(stops) - 1:
			azimuths[i] = geometry.Azimuth(stops[i-1].Facility.Coord, stops[i].Facility.Coord)
		default:
			azimuths[i] = geometry.Azimuth(stops[i-1].Facility.Coord, stops[i+1].Facility.Coord)
		}
	}
	return azimuths
}
