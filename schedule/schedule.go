// Package schedule holds the transit schedule model the mapper reads
// and rewrites: stop facilities, lines, routes with their stop
// sequences and departures, and — after mapping — the link sequence
// each route follows through the network.
package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// UndefinedTime marks an arrival or departure offset that the input
// feed did not define.
const UndefinedTime = -1.0

const childFacilitySeparator = ".link:"

// StopFacility is a physical stop location. After mapping, RefLinkID
// names the network link the facility is bound to.
type StopFacility struct {
	ID         string
	Coord      types.Coord
	Name       string
	IsBlocking bool
	RefLinkID  string
}

// ChildFacilityID derives the identifier of the child facility binding
// a parent facility to a specific link. The construction is a pure
// function of its inputs so repeated mapping runs derive identical
// identifiers.
func ChildFacilityID(parentID, linkID string) string {
	return parentID + childFacilitySeparator + linkID
}

// ParentFacilityID strips the child-facility suffix, returning the
// original parent identifier. Ids without a suffix are returned
// unchanged, which makes re-mapping an already-mapped schedule derive
// the same children instead of stacking suffixes.
func ParentFacilityID(id string) string {
	if i := strings.Index(id, childFacilitySeparator); i >= 0 {
		return id[:i]
	}
	return id
}

// RouteStop is one entry of a route's stop sequence: the referenced
// facility plus scheduled offsets relative to departure at the first
// stop.
type RouteStop struct {
	Facility        *StopFacility
	ArrivalOffset   float64
	DepartureOffset float64
	AwaitDeparture  bool
}

// Departure is a single scheduled departure of a route.
type Departure struct {
	ID        string
	Time      float64
	VehicleID string
}

// Route is a transit route: an ordered stop sequence, a transport
// mode, departures, and — once mapped — the network link sequence the
// vehicle traverses. Consecutive links of a mapped sequence share an
// endpoint node.
type Route struct {
	ID          string
	Mode        string
	Description string
	ShapeID     string
	Stops       []*RouteStop
	Links       []string

	departures map[string]*Departure
}

// NewRoute creates an empty route.
func NewRoute(id, mode string) *Route {
	return &Route{
		ID:         id,
		Mode:       mode,
		departures: make(map[string]*Departure),
	}
}

// AddDeparture inserts a departure. Duplicate ids are an error.
func (r *Route) AddDeparture(d *Departure) error {
	if _, exists := r.departures[d.ID]; exists {
		return fmt.Errorf("duplicate departure id %q on route %q", d.ID, r.ID)
	}
	r.departures[d.ID] = d
	return nil
}

// Departures returns the route's departures ordered by id.
func (r *Route) Departures() []*Departure {
	ids := make([]string, 0, len(r.departures))
	for id := range r.departures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	deps := make([]*Departure, len(ids))
	for i, id := range ids {
		deps[i] = r.departures[id]
	}
	return deps
}

// IsMapped reports whether the route carries a link sequence.
func (r *Route) IsMapped() bool {
	return len(r.Links) > 0
}

// Line groups routes under one transit line.
type Line struct {
	ID     string
	Name   string
	routes map[string]*Route
}

// NewLine creates an empty line.
func NewLine(id string) *Line {
	return &Line{ID: id, routes: make(map[string]*Route)}
}

// AddRoute inserts a route. Duplicate ids are an error.
func (l *Line) AddRoute(r *Route) error {
	if _, exists := l.routes[r.ID]; exists {
		return fmt.Errorf("duplicate route id %q on line %q", r.ID, l.ID)
	}
	l.routes[r.ID] = r
	return nil
}

// Route returns the route with the given id, or nil.
func (l *Line) Route(id string) *Route {
	return l.routes[id]
}

// RemoveRoute deletes a route from the line.
func (l *Line) RemoveRoute(id string) {
	delete(l.routes, id)
}

// RouteIDs returns the line's route ids in sorted order.
func (l *Line) RouteIDs() []string {
	ids := make([]string, 0, len(l.routes))
	for id := range l.routes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Routes returns the line's routes ordered by id.
func (l *Line) Routes() []*Route {
	routes := make([]*Route, 0, len(l.routes))
	for _, id := range l.RouteIDs() {
		routes = append(routes, l.routes[id])
	}
	return routes
}

// Schedule is the full transit schedule: stop facilities plus lines.
type Schedule struct {
	facilities map[string]*StopFacility
	lines      map[string]*Line
}

// New creates an empty schedule.
func New() *Schedule {
	return &Schedule{
		facilities: make(map[string]*StopFacility),
		lines:      make(map[string]*Line),
	}
}

// AddFacility inserts a stop facility. Duplicate ids are an error.
func (s *Schedule) AddFacility(f *StopFacility) error {
	if _, exists := s.facilities[f.ID]; exists {
		return fmt.Errorf("duplicate stop facility id %q", f.ID)
	}
	s.facilities[f.ID] = f
	return nil
}

// Facility returns the stop facility with the given id, or nil.
func (s *Schedule) Facility(id string) *StopFacility {
	return s.facilities[id]
}

// RemoveFacility deletes a stop facility.
func (s *Schedule) RemoveFacility(id string) {
	delete(s.facilities, id)
}

// FacilityIDs returns all facility ids in sorted order.
func (s *Schedule) FacilityIDs() []string {
	ids := make([]string, 0, len(s.facilities))
	for id := range s.facilities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddLine inserts a line. Duplicate ids are an error.
func (s *Schedule) AddLine(l *Line) error {
	if _, exists := s.lines[l.ID]; exists {
		return fmt.Errorf("duplicate transit line id %q", l.ID)
	}
	s.lines[l.ID] = l
	return nil
}

// Line returns the line with the given id, or nil.
func (s *Schedule) Line(id string) *Line {
	return s.lines[id]
}

// RemoveLine deletes a line and all its routes.
func (s *Schedule) RemoveLine(id string) {
	delete(s.lines, id)
}

// LineIDs returns all line ids in sorted order.
func (s *Schedule) LineIDs() []string {
	ids := make([]string, 0, len(s.lines))
	for id := range s.lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lines returns all lines ordered by id.
func (s *Schedule) Lines() []*Line {
	lines := make([]*Line, 0, len(s.lines))
	for _, id := range s.LineIDs() {
		lines = append(lines, s.lines[id])
	}
	return lines
}

// NumRoutes returns the total route count over all lines.
func (s *Schedule) NumRoutes() int {
	total := 0
	for _, l := range s.lines {
		total += len(l.routes)
	}
	return total
}

// FacilitiesInUse returns the set of facility ids referenced by at
// least one route.
func (s *Schedule) FacilitiesInUse() map[string]struct{} {
	used := make(map[string]struct{})
	for _, line := range s.lines {
		for _, route := range line.routes {
			for _, stop := range route.Stops {
				used[stop.Facility.ID] = struct{}{}
			}
		}
	}
	return used
}

// RemoveUnusedFacilities drops every facility no route references and
// returns the removed ids in sorted order.
func (s *Schedule) RemoveUnusedFacilities() []string {
	used := s.FacilitiesInUse()
	var removed []string
	for id := range s.facilities {
		if _, ok := used[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	for _, id := range removed {
		delete(s.facilities, id)
	}
	return removed
}
