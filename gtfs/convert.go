// Package gtfs converts a parsed GTFS feed into the unmapped transit
// schedule and shapes map the mapper consumes. Trips sharing a route,
// shape, stop sequence and relative timing collapse into one transit route
// with one departure per trip.
package gtfs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/patrickbr/gtfsparser"

	"github.com/theoremus-urban-solutions/transit-network-mapper/geometry"
	"github.com/theoremus-urban-solutions/transit-network-mapper/schedule"
	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// LoadFile parses a GTFS zip or directory and converts it.
func LoadFile(path string) (*schedule.Schedule, map[string]*geometry.Shape, error) {
	feed := gtfsparser.NewFeed()
	if err := feed.Parse(path); err != nil {
		return nil, nil, fmt.Errorf("failed to parse GTFS feed %s: %w", path, err)
	}
	return Convert(feed)
}

// Convert translates a parsed feed into a schedule plus shapes.
//
// Stop coordinates are taken over verbatim (lon as x, lat as y); the
// mapper does not re-project, so the network must use the same
// coordinate space as the feed.
func Convert(feed *gtfsparser.Feed) (*schedule.Schedule, map[string]*geometry.Shape, error) {
	stops := make(map[string]stopRecord, len(feed.Stops))
	for id, s := range feed.Stops {
		stops[id] = stopRecord{
			ID:    id,
			Name:  s.Name,
			Coord: types.NewCoord(float64(s.Lon), float64(s.Lat)),
		}
	}

	trips := make([]tripRecord, 0, len(feed.Trips))
	for _, t := range feed.Trips {
		if t.Route == nil || len(t.StopTimes) == 0 {
			continue
		}
		rec := tripRecord{
			ID:      t.Id,
			RouteID: t.Route.Id,
			Mode:    ModeForRouteType(t.Route.Type),
		}
		if t.Shape != nil {
			rec.ShapeID = t.Shape.Id
		}
		for i := range t.StopTimes {
			st := &t.StopTimes[i]
			rec.Stops = append(rec.Stops, tripStop{
				StopID:    st.Stop().Id,
				Arrival:   float64(st.Arrival_time().SecondsSinceMidnight()),
				Departure: float64(st.Departure_time().SecondsSinceMidnight()),
			})
		}
		trips = append(trips, rec)
	}

	s, err := buildSchedule(stops, trips)
	if err != nil {
		return nil, nil, err
	}

	shapes := make(map[string]*geometry.Shape, len(feed.Shapes))
	for id, sh := range feed.Shapes {
		points := make([]types.Coord, 0, len(sh.Points))
		for _, p := range sh.Points {
			points = append(points, types.NewCoord(float64(p.Lon), float64(p.Lat)))
		}
		shapes[id] = geometry.NewShape(id, points)
	}

	return s, shapes, nil
}

// ModeForRouteType maps a GTFS route type (basic or extended) to a
// schedule transport mode.
func ModeForRouteType(routeType int16) string {
	switch routeType {
	case 0:
		return "tram"
	case 1:
		return "subway"
	case 2:
		return "rail"
	case 3:
		return "bus"
	case 4:
		return "ferry"
	case 5:
		return "cablecar"
	case 6:
		return "gondola"
	case 7:
		return "funicular"
	}
	// extended route types
	switch {
	case routeType >= 100 && routeType < 200:
		return "rail"
	case routeType >= 200 && routeType < 300:
		return "bus"
	case routeType >= 400 && routeType < 500:
		return "subway"
	case routeType >= 700 && routeType < 800:
		return "bus"
	case routeType >= 900 && routeType < 1000:
		return "tram"
	case routeType >= 1000 && routeType < 1100:
		return "ferry"
	default:
		return "bus"
	}
}

type stopRecord struct {
	ID    string
	Name  string
	Coord types.Coord
}

type tripStop struct {
	StopID    string
	Arrival   float64
	Departure float64
}

type tripRecord struct {
	ID      string
	RouteID string
	Mode    string
	ShapeID string
	Stops   []tripStop
}

// profileKey builds the grouping signature of a trip: its shape id and
// stop sequence plus the offsets of every stop relative to first departure.
// Trips with equal signatures become departures of one transit route.
func (t *tripRecord) profileKey() string {
	var b strings.Builder
	b.WriteString(t.ShapeID)
	start := t.Stops[0].Departure
	for _, s := range t.Stops {
		fmt.Fprintf(&b, "|%s@%g/%g", s.StopID, s.Arrival-start, s.Departure-start)
	}
	return b.String()
}

func buildSchedule(stops map[string]stopRecord, trips []tripRecord) (*schedule.Schedule, error) {
	s := schedule.New()

	for _, id := range sortedStopIDs(stops) {
		rec := stops[id]
		if err := s.AddFacility(&schedule.StopFacility{
			ID:    rec.ID,
			Coord: rec.Coord,
			Name:  rec.Name,
		}); err != nil {
			return nil, err
		}
	}

	// group trips by route, then by profile signature
	byRoute := make(map[string][]tripRecord)
	for _, t := range trips {
		byRoute[t.RouteID] = append(byRoute[t.RouteID], t)
	}

	routeIDs := make([]string, 0, len(byRoute))
	for id := range byRoute {
		routeIDs = append(routeIDs, id)
	}
	sort.Strings(routeIDs)

	for _, routeID := range routeIDs {
		line := schedule.NewLine(routeID)
		if err := s.AddLine(line); err != nil {
			return nil, err
		}

		group := byRoute[routeID]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		profiles := make(map[string]*schedule.Route)
		nextRoute := 0
		for i := range group {
			trip := &group[i]
			key := trip.profileKey()
			route, ok := profiles[key]
			if !ok {
				route = schedule.NewRoute(fmt.Sprintf("%s_%d", routeID, nextRoute), trip.Mode)
				nextRoute++
				route.ShapeID = trip.ShapeID
				start := trip.Stops[0].Departure
				for _, ts := range trip.Stops {
					facility := s.Facility(ts.StopID)
					if facility == nil {
						return nil, fmt.Errorf("trip %s references unknown stop %q", trip.ID, ts.StopID)
					}
					route.Stops = append(route.Stops, &schedule.RouteStop{
						Facility:        facility,
						ArrivalOffset:   ts.Arrival - start,
						DepartureOffset: ts.Departure - start,
					})
				}
				profiles[key] = route
				if err := line.AddRoute(route); err != nil {
					return nil, err
				}
			}
			if err := route.AddDeparture(&schedule.Departure{
				ID:   trip.ID,
				Time: trip.Stops[0].Departure,
			}); err != nil {
				return nil, err
			}
		}
	}

	return s, nil
}

func sortedStopIDs(stops map[string]stopRecord) []string {
	ids := make([]string, 0, len(stops))
	for id := range stops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
