package network

import (
	"math"
	"sort"

	"github.com/theoremus-urban-solutions/transit-network-mapper/geometry"
	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// SpatialIndex answers radius queries over link geometry. Links are
// bucketed into a uniform grid by the cells their segment's bounding
// box overlaps; a query scans the cells covered by the search circle.
//
// The index is built once per batch over the read-only input network
// and is safe for concurrent queries.
type SpatialIndex struct {
	cellSize float64
	cells    map[cellKey][]*Link
}

type cellKey struct {
	x, y int
}

// NewSpatialIndex builds an index over all links of the network.
// cellSize should be on the order of the typical candidate search
// radius; values below 1m are clamped.
func NewSpatialIndex(n *Network, cellSize float64) *SpatialIndex {
	if cellSize < 1 {
		cellSize = 1
	}
	idx := &SpatialIndex{
		cellSize: cellSize,
		cells:    make(map[cellKey][]*Link),
	}
	for _, id := range n.LinkIDs() {
		idx.insert(n.Link(id))
	}
	return idx
}

func (s *SpatialIndex) insert(l *Link) {
	minX := math.Min(l.From.Coord.X, l.To.Coord.X)
	maxX := math.Max(l.From.Coord.X, l.To.Coord.X)
	minY := math.Min(l.From.Coord.Y, l.To.Coord.Y)
	maxY := math.Max(l.From.Coord.Y, l.To.Coord.Y)
	for cx := s.cellOf(minX); cx <= s.cellOf(maxX); cx++ {
		for cy := s.cellOf(minY); cy <= s.cellOf(maxY); cy++ {
			key := cellKey{cx, cy}
			s.cells[key] = append(s.cells[key], l)
		}
	}
}

func (s *SpatialIndex) cellOf(v float64) int {
	return int(math.Floor(v / s.cellSize))
}

// LinkDistance is a link together with its distance to a query point.
type LinkDistance struct {
	Link     *Link
	Distance float64
}

// LinksWithinDistance returns all links whose segment lies within the
// given radius of the coordinate, ordered by ascending distance with
// ties broken by link id.
func (s *SpatialIndex) LinksWithinDistance(c types.Coord, radius float64) []LinkDistance {
	seen := make(map[*Link]struct{})
	var result []LinkDistance
	for cx := s.cellOf(c.X - radius); cx <= s.cellOf(c.X+radius); cx++ {
		for cy := s.cellOf(c.Y - radius); cy <= s.cellOf(c.Y+radius); cy++ {
			for _, l := range s.cells[cellKey{cx, cy}] {
				if _, dup := seen[l]; dup {
					continue
				}
				seen[l] = struct{}{}
				d := geometry.DistanceToSegment(c, l.From.Coord, l.To.Coord)
				if d <= radius {
					result = append(result, LinkDistance{Link: l, Distance: d})
				}
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Distance != result[j].Distance {
			return result[i].Distance < result[j].Distance
		}
		return result[i].Link.ID < result[j].Link.ID
	})
	return result
}
