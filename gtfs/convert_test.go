package gtfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

func testStops() map[string]stopRecord {
	return map[string]stopRecord{
		"s1": {ID: "s1", Name: "First", Coord: types.NewCoord(0, 0)},
		"s2": {ID: "s2", Name: "Second", Coord: types.NewCoord(100, 0)},
		"s3": {ID: "s3", Name: "Third", Coord: types.NewCoord(200, 0)},
	}
}

func TestBuildScheduleGroupsIdenticalProfiles(t *testing.T) {
	trips := []tripRecord{
		{
			ID: "t1", RouteID: "r", Mode: "bus",
			Stops: []tripStop{
				{StopID: "s1", Arrival: 7 * 3600, Departure: 7 * 3600},
				{StopID: "s2", Arrival: 7*3600 + 120, Departure: 7*3600 + 150},
			},
		},
		{
			// same profile one hour later: same relative offsets
			ID: "t2", RouteID: "r", Mode: "bus",
			Stops: []tripStop{
				{StopID: "s1", Arrival: 8 * 3600, Departure: 8 * 3600},
				{StopID: "s2", Arrival: 8*3600 + 120, Departure: 8*3600 + 150},
			},
		},
	}

	s, err := buildSchedule(testStops(), trips)
	require.NoError(t, err)

	line := s.Line("r")
	require.NotNil(t, line)
	require.Equal(t, []string{"r_0"}, line.RouteIDs())

	route := line.Route("r_0")
	require.Len(t, route.Stops, 2)
	assert.Equal(t, 0.0, route.Stops[0].ArrivalOffset)
	assert.Equal(t, 120.0, route.Stops[1].ArrivalOffset)
	assert.Equal(t, 150.0, route.Stops[1].DepartureOffset)

	deps := route.Departures()
	require.Len(t, deps, 2)
	assert.Equal(t, 7*3600.0, deps[0].Time)
	assert.Equal(t, 8*3600.0, deps[1].Time)
}

func TestBuildScheduleSplitsDifferentProfiles(t *testing.T) {
	trips := []tripRecord{
		{
			ID: "t1", RouteID: "r", Mode: "bus",
			Stops: []tripStop{
				{StopID: "s1", Arrival: 0, Departure: 0},
				{StopID: "s2", Arrival: 120, Departure: 120},
			},
		},
		{
			// an extra stop: a different transit route
			ID: "t2", RouteID: "r", Mode: "bus",
			Stops: []tripStop{
				{StopID: "s1", Arrival: 3600, Departure: 3600},
				{StopID: "s2", Arrival: 3720, Departure: 3720},
				{StopID: "s3", Arrival: 3840, Departure: 3840},
			},
		},
	}

	s, err := buildSchedule(testStops(), trips)
	require.NoError(t, err)

	line := s.Line("r")
	require.NotNil(t, line)
	assert.Equal(t, []string{"r_0", "r_1"}, line.RouteIDs())
	assert.Len(t, line.Route("r_0").Stops, 2)
	assert.Len(t, line.Route("r_1").Stops, 3)
}

func TestBuildScheduleKeepsShapeAssignment(t *testing.T) {
	trips := []tripRecord{
		{
			ID: "t1", RouteID: "r", Mode: "bus", ShapeID: "shp1",
			Stops: []tripStop{
				{StopID: "s1", Arrival: 0, Departure: 0},
				{StopID: "s2", Arrival: 60, Departure: 60},
			},
		},
	}

	s, err := buildSchedule(testStops(), trips)
	require.NoError(t, err)
	assert.Equal(t, "shp1", s.Line("r").Route("r_0").ShapeID)
}

func TestBuildScheduleUnknownStop(t *testing.T) {
	trips := []tripRecord{
		{
			ID: "t1", RouteID: "r", Mode: "bus",
			Stops: []tripStop{{StopID: "ghost", Arrival: 0, Departure: 0}},
		},
	}

	_, err := buildSchedule(testStops(), trips)
	assert.Error(t, err)
}

func TestModeForRouteType(t *testing.T) {
	cases := []struct {
		routeType int16
		mode      string
	}{
		{0, "tram"},
		{1, "subway"},
		{2, "rail"},
		{3, "bus"},
		{4, "ferry"},
		{7, "funicular"},
		{109, "rail"},
		{208, "bus"},
		{401, "subway"},
		{704, "bus"},
		{900, "tram"},
		{8888, "bus"},
	}
	for _, c := range cases {
		assert.Equal(t, c.mode, ModeForRouteType(c.routeType), "route type %d", c.routeType)
	}
}
