// Package geometry provides the planar geometric primitives the mapper
// needs: point-to-segment distances for link candidate search and
// polyline distances for shape-biased routing.
package geometry

import (
	"math"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// ClosestPointOnSegment returns the point on the segment [a,b] closest to p.
func ClosestPointOnSegment(p, a, b types.Coord) types.Coord {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return a
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return types.Coord{X: a.X + t*abx, Y: a.Y + t*aby}
}

// DistanceToSegment returns the distance from p to the segment [a,b].
func DistanceToSegment(p, a, b types.Coord) float64 {
	return p.DistanceTo(ClosestPointOnSegment(p, a, b))
}

// Azimuth returns the direction from a to b in radians clockwise from
// north, in [0, 2π): north is 0, east is π/2, south is π, west is
// 3π/2. Coincident points have no direction; NaN is returned.
func Azimuth(a, b types.Coord) float64 {
	if a == b {
		return math.NaN()
	}
	az := math.Atan2(b.X-a.X, b.Y-a.Y)
	if az < 0 {
		az += 2 * math.Pi
	}
	return az
}

// AzimuthAgrees reports whether two azimuths differ by no more than
// tolerance radians, wrapping around north. A NaN azimuth carries no
// direction signal and agrees with everything.
func AzimuthAgrees(a, b, tolerance float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	d := math.Abs(a - b)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d <= tolerance
}

const earthRadius = 6371000

// GreatCircleDistance returns the haversine distance in meters between
// two geographic coordinates (x longitude, y latitude, in degrees).
// It applies to artifacts in geographic space, such as unprojected
// GTFS feeds; the mapper core works on planar coordinates with
// Coord.DistanceTo.
func GreatCircleDistance(a, b types.Coord) float64 {
	lat1 := a.Y * math.Pi / 180
	lat2 := b.Y * math.Pi / 180
	deltaLat := (b.Y - a.Y) * math.Pi / 180
	deltaLon := (b.X - a.X) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}
