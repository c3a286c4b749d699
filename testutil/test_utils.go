// Package testutil provides shared fixtures for mapper tests: small
// grid networks, simple schedules, and input XML fragments.
package testutil

import (
	"fmt"
	"testing"

	"github.com/theoremus-urban-solutions/transit-network-mapper/network"
	"github.com/theoremus-urban-solutions/transit-network-mapper/schedule"
	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// Test constants commonly used in tests
const (
	TestFreespeed = 10.0
	TestCapacity  = 1000.0
)

// NetworkTestFragment is a minimal network document for reader tests.
const NetworkTestFragment = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE network SYSTEM "http://www.matsim.org/files/dtd/network_v2.dtd">
<network name="test">
	<nodes>
		<node id="a" x="0" y="0"/>
		<node id="b" x="100" y="0"/>
	</nodes>
	<links>
		<link id="ab" from="a" to="b" length="100" freespeed="10" capacity="1000" permlanes="1" modes="car,bus"/>
		<link id="ba" from="b" to="a" length="100" freespeed="10" capacity="1000" permlanes="1" modes="car,bus"/>
	</links>
</network>`

// ScheduleTestFragment is a minimal transit schedule document for
// reader tests.
const ScheduleTestFragment = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE transitSchedule SYSTEM "http://www.matsim.org/files/dtd/transitSchedule_v2.dtd">
<transitSchedule>
	<transitStops>
		<stopFacility id="stop1" x="10" y="0" name="First" isBlocking="false"/>
		<stopFacility id="stop2" x="90" y="0" name="Second" isBlocking="false"/>
	</transitStops>
	<transitLine id="line1">
		<transitRoute id="route1">
			<transportMode>bus</transportMode>
			<routeProfile>
				<stop refId="stop1" departureOffset="00:00:00"/>
				<stop refId="stop2" arrivalOffset="00:02:00"/>
			</routeProfile>
			<departures>
				<departure id="dep1" departureTime="07:00:00"/>
			</departures>
		</transitRoute>
	</transitLine>
</transitSchedule>`

// GridNetwork builds an n-by-n grid with the given spacing in meters.
// Node ids are "r,c" by row and column; between every pair of adjacent
// nodes both directed links exist, named "<from>-<to>", permitting the
// given modes. All links use TestFreespeed and TestCapacity.
func GridNetwork(t *testing.T, n int, spacing float64, modes []string) *network.Network {
	t.Helper()
	net := network.New("grid")

	nodeID := func(r, c int) string { return fmt.Sprintf("%d,%d", r, c) }

	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if _, err := net.AddNode(nodeID(r, c), types.NewCoord(float64(c)*spacing, float64(r)*spacing)); err != nil {
				t.Fatalf("add node: %v", err)
			}
		}
	}

	addBoth := func(a, b string) {
		for _, pair := range [][2]string{{a, b}, {b, a}} {
			id := pair[0] + "-" + pair[1]
			if _, err := net.AddLink(id, pair[0], pair[1], spacing, TestFreespeed, TestCapacity, modes); err != nil {
				t.Fatalf("add link %s: %v", id, err)
			}
		}
	}

	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if c+1 < n {
				addBoth(nodeID(r, c), nodeID(r, c+1))
			}
			if r+1 < n {
				addBoth(nodeID(r, c), nodeID(r+1, c))
			}
		}
	}

	return net
}

// OneWayPairNetwork builds two parallel one-way corridors with no
// reverse twins: an eastbound lane "e1","e2" along y=0 through (0,0),
// (400,0), (800,0), and a single westbound link "w" along y=20 from
// (800,20) to (0,20). A stop between the lanes is nearer to the
// westbound link, so wrong-direction exclusion is observable.
func OneWayPairNetwork(t *testing.T, modes []string) *network.Network {
	t.Helper()
	net := network.New("oneway")
	coords := map[string]types.Coord{
		"a": {X: 0, Y: 0}, "b": {X: 400, Y: 0}, "c": {X: 800, Y: 0},
		"f": {X: 800, Y: 20}, "h": {X: 0, Y: 20},
	}
	for _, id := range []string{"a", "b", "c", "f", "h"} {
		if _, err := net.AddNode(id, coords[id]); err != nil {
			t.Fatalf("add node: %v", err)
		}
	}
	for _, l := range []struct {
		id, from, to string
	}{{"e1", "a", "b"}, {"e2", "b", "c"}, {"w", "f", "h"}} {
		length := coords[l.from].DistanceTo(coords[l.to])
		if _, err := net.AddLink(l.id, l.from, l.to, length, TestFreespeed, TestCapacity, modes); err != nil {
			t.Fatalf("add link %s: %v", l.id, err)
		}
	}
	return net
}

// StopSpec describes one stop of a schedule fixture.
type StopSpec struct {
	ID        string
	X, Y      float64
	Arrival   float64
	Departure float64
}

// SingleRouteSchedule builds a schedule with one line and one route
// over the given stops.
func SingleRouteSchedule(t *testing.T, lineID, routeID, mode string, stops []StopSpec) *schedule.Schedule {
	t.Helper()
	s := schedule.New()
	line := schedule.NewLine(lineID)
	if err := s.AddLine(line); err != nil {
		t.Fatalf("add line: %v", err)
	}
	route := schedule.NewRoute(routeID, mode)
	if err := line.AddRoute(route); err != nil {
		t.Fatalf("add route: %v", err)
	}
	AppendStops(t, s, route, stops)
	if err := route.AddDeparture(&schedule.Departure{ID: "dep1", Time: 7 * 3600}); err != nil {
		t.Fatalf("add departure: %v", err)
	}
	return s
}

// AppendStops registers the stop facilities (unless already present)
// and appends them to the route's profile.
func AppendStops(t *testing.T, s *schedule.Schedule, route *schedule.Route, stops []StopSpec) {
	t.Helper()
	for _, spec := range stops {
		facility := s.Facility(spec.ID)
		if facility == nil {
			facility = &schedule.StopFacility{
				ID:    spec.ID,
				Coord: types.NewCoord(spec.X, spec.Y),
				Name:  spec.ID,
			}
			if err := s.AddFacility(facility); err != nil {
				t.Fatalf("add facility: %v", err)
			}
		}
		arrival := spec.Arrival
		departure := spec.Departure
		if arrival == 0 && departure == 0 {
			arrival = schedule.UndefinedTime
			departure = schedule.UndefinedTime
		}
		route.Stops = append(route.Stops, &schedule.RouteStop{
			Facility:        facility,
			ArrivalOffset:   arrival,
			DepartureOffset: departure,
		})
	}
}
