package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

func TestChildFacilityID(t *testing.T) {
	assert.Equal(t, "stop1.link:l42", ChildFacilityID("stop1", "l42"))
}

func TestParentFacilityID(t *testing.T) {
	assert.Equal(t, "stop1", ParentFacilityID("stop1"))
	assert.Equal(t, "stop1", ParentFacilityID("stop1.link:l42"))
	// re-deriving from a child id never stacks suffixes
	assert.Equal(t, "stop1", ParentFacilityID(ChildFacilityID(ParentFacilityID("stop1.link:l42"), "l7")))
}

func TestScheduleFacilities(t *testing.T) {
	s := New()
	require.NoError(t, s.AddFacility(&StopFacility{ID: "b", Coord: types.NewCoord(1, 1)}))
	require.NoError(t, s.AddFacility(&StopFacility{ID: "a", Coord: types.NewCoord(0, 0)}))

	assert.Error(t, s.AddFacility(&StopFacility{ID: "a"}))
	assert.Equal(t, []string{"a", "b"}, s.FacilityIDs())
	assert.NotNil(t, s.Facility("a"))

	s.RemoveFacility("a")
	assert.Nil(t, s.Facility("a"))
}

func TestRouteDeparturesSorted(t *testing.T) {
	r := NewRoute("r1", "bus")
	require.NoError(t, r.AddDeparture(&Departure{ID: "z", Time: 100}))
	require.NoError(t, r.AddDeparture(&Departure{ID: "a", Time: 200}))
	assert.Error(t, r.AddDeparture(&Departure{ID: "a", Time: 300}))

	deps := r.Departures()
	require.Len(t, deps, 2)
	assert.Equal(t, "a", deps[0].ID)
	assert.Equal(t, "z", deps[1].ID)
}

func TestRemoveUnusedFacilities(t *testing.T) {
	s := New()
	used := &StopFacility{ID: "used"}
	unused := &StopFacility{ID: "unused"}
	require.NoError(t, s.AddFacility(used))
	require.NoError(t, s.AddFacility(unused))

	line := NewLine("line1")
	require.NoError(t, s.AddLine(line))
	route := NewRoute("r1", "bus")
	require.NoError(t, line.AddRoute(route))
	route.Stops = append(route.Stops, &RouteStop{Facility: used})

	removed := s.RemoveUnusedFacilities()
	assert.Equal(t, []string{"unused"}, removed)
	assert.NotNil(t, s.Facility("used"))
	assert.Nil(t, s.Facility("unused"))
}

func TestParseTime(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		v, err := ParseTime("07:30:15")
		require.NoError(t, err)
		assert.Equal(t, 7*3600.0+30*60+15, v)
	})

	t.Run("Past midnight", func(t *testing.T) {
		v, err := ParseTime("25:00:00")
		require.NoError(t, err)
		assert.Equal(t, 25*3600.0, v)
	})

	t.Run("Empty is undefined", func(t *testing.T) {
		v, err := ParseTime("")
		require.NoError(t, err)
		assert.Equal(t, UndefinedTime, v)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, raw := range []string{"7:30", "aa:bb:cc", "00:61:00", "-1:00:00"} {
			_, err := ParseTime(raw)
			assert.Error(t, err, raw)
		}
	})
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "07:30:15", FormatTime(7*3600+30*60+15))
	assert.Equal(t, "25:00:00", FormatTime(25*3600))
	assert.Equal(t, "", FormatTime(UndefinedTime))
}

func TestFacilitiesInUse(t *testing.T) {
	s := New()
	f := &StopFacility{ID: "s1"}
	require.NoError(t, s.AddFacility(f))
	line := NewLine("l")
	require.NoError(t, s.AddLine(line))
	route := NewRoute("r", "bus")
	require.NoError(t, line.AddRoute(route))
	route.Stops = append(route.Stops, &RouteStop{Facility: f})

	used := s.FacilitiesInUse()
	_, ok := used["s1"]
	assert.True(t, ok)
	assert.Len(t, used, 1)
}
