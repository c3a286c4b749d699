package schedule

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// queries are compiled once; parsing large schedules runs them per
// document.
var (
	scheduleRootQuery = xpath.MustCompile("/transitSchedule")
	facilityQuery     = xpath.MustCompile("transitStops/stopFacility")
	lineQuery         = xpath.MustCompile("transitLine")
	routeQuery        = xpath.MustCompile("transitRoute")
	profileStopQuery  = xpath.MustCompile("routeProfile/stop")
	routeLinkQuery    = xpath.MustCompile("route/link")
	departureQuery    = xpath.MustCompile("departures/departure")
)

// ReadFile reads a MATSim-format transit schedule XML file.
func ReadFile(path string) (*Schedule, error) {
	f, err := os.Open(path) //nolint:gosec // caller-supplied input artifact
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule file: %w", err)
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file %s: %w", path, err)
	}
	return s, nil
}

// Read parses a MATSim-format transit schedule document from a reader.
func Read(r io.Reader) (*Schedule, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule XML: %w", err)
	}

	root := xmlquery.QuerySelector(doc, scheduleRootQuery)
	if root == nil {
		return nil, fmt.Errorf("document has no <transitSchedule> root element")
	}

	s := New()

	for _, n := range xmlquery.QuerySelectorAll(root, facilityQuery) {
		id := attr(n, "id")
		if id == "" {
			return nil, fmt.Errorf("stop facility without id attribute")
		}
		x, err := floatAttr(n, "x")
		if err != nil {
			return nil, fmt.Errorf("stop facility %s: %w", id, err)
		}
		y, err := floatAttr(n, "y")
		if err != nil {
			return nil, fmt.Errorf("stop facility %s: %w", id, err)
		}
		facility := &StopFacility{
			ID:         id,
			Coord:      types.NewCoord(x, y),
			Name:       attr(n, "name"),
			IsBlocking: attr(n, "isBlocking") == "true",
			RefLinkID:  attr(n, "linkRefId"),
		}
		if err := s.AddFacility(facility); err != nil {
			return nil, err
		}
	}

	for _, ln := range xmlquery.QuerySelectorAll(root, lineQuery) {
		line := NewLine(attr(ln, "id"))
		if line.ID == "" {
			return nil, fmt.Errorf("transit line without id attribute")
		}
		line.Name = attr(ln, "name")
		if err := s.AddLine(line); err != nil {
			return nil, err
		}

		for _, rt := range xmlquery.QuerySelectorAll(ln, routeQuery) {
			route, err := readRoute(s, line, rt)
			if err != nil {
				return nil, err
			}
			if err := line.AddRoute(route); err != nil {
				return nil, err
			}
		}
	}

	return s, nil
}

func readRoute(s *Schedule, line *Line, rt *xmlquery.Node) (*Route, error) {
	id := attr(rt, "id")
	if id == "" {
		return nil, fmt.Errorf("transit route without id on line %s", line.ID)
	}
	mode := ""
	if n := xmlquery.FindOne(rt, "transportMode"); n != nil {
		mode = n.InnerText()
	}
	if mode == "" {
		return nil, fmt.Errorf("transit route %s on line %s has no transport mode", id, line.ID)
	}
	route := NewRoute(id, mode)
	if n := xmlquery.FindOne(rt, "description"); n != nil {
		route.Description = n.InnerText()
	}

	for _, stop := range xmlquery.QuerySelectorAll(rt, profileStopQuery) {
		refID := attr(stop, "refId")
		facility := s.Facility(refID)
		if facility == nil {
			return nil, fmt.Errorf("route %s on line %s references unknown stop facility %q", id, line.ID, refID)
		}
		arrival, err := ParseTime(attr(stop, "arrivalOffset"))
		if err != nil {
			return nil, fmt.Errorf("route %s stop %s: %w", id, refID, err)
		}
		departure, err := ParseTime(attr(stop, "departureOffset"))
		if err != nil {
			return nil, fmt.Errorf("route %s stop %s: %w", id, refID, err)
		}
		route.Stops = append(route.Stops, &RouteStop{
			Facility:        facility,
			ArrivalOffset:   arrival,
			DepartureOffset: departure,
			AwaitDeparture:  attr(stop, "awaitDeparture") == "true",
		})
	}

	for _, link := range xmlquery.QuerySelectorAll(rt, routeLinkQuery) {
		route.Links = append(route.Links, attr(link, "refId"))
	}

	for _, dep := range xmlquery.QuerySelectorAll(rt, departureQuery) {
		t, err := ParseTime(attr(dep, "departureTime"))
		if err != nil {
			return nil, fmt.Errorf("route %s departure %s: %w", id, attr(dep, "id"), err)
		}
		if err := route.AddDeparture(&Departure{
			ID:        attr(dep, "id"),
			Time:      t,
			VehicleID: attr(dep, "vehicleRefId"),
		}); err != nil {
			return nil, err
		}
	}

	return route, nil
}

func attr(n *xmlquery.Node, name string) string {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func floatAttr(n *xmlquery.Node, name string) (float64, error) {
	raw := attr(n, name)
	if raw == "" {
		return 0, fmt.Errorf("missing attribute %q", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid attribute %s=%q: %w", name, raw, err)
	}
	return v, nil
}
