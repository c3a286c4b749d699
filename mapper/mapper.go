// Package mapper assigns every transit route of a schedule a concrete
// link sequence through a multimodal network. Per route it generates
// link candidates for each stop, routes between candidates on the
// mode-restricted subgraph, resolves the joint choice as a shortest
// path over a layered pseudo-graph, and commits the result back into
// the schedule and network.
//
// Solving runs in parallel over routes against read-only inputs;
// materialization happens in a single-threaded commit phase in a
// deterministic route order, so the output is a pure function of the
// inputs and configuration.
package mapper

import (
	"context"
	"sort"
	"time"

	"github.com/theoremus-urban-solutions/transit-network-mapper/config"
	mapErrors "github.com/theoremus-urban-solutions/transit-network-mapper/errors"
	"github.com/theoremus-urban-solutions/transit-network-mapper/geometry"
	"github.com/theoremus-urban-solutions/transit-network-mapper/logging"
	"github.com/theoremus-urban-solutions/transit-network-mapper/network"
	"github.com/theoremus-urban-solutions/transit-network-mapper/router"
	"github.com/theoremus-urban-solutions/transit-network-mapper/schedule"
	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// batch holds the shared state of one mapping run. The schedule and
// network are read-only during the parallel solve phase and mutated
// only by the commit and finalize phases.
type batch struct {
	cfg      *config.MapperConfig
	log      *logging.Logger
	schedule *schedule.Schedule
	net      *network.Network
	shapes   map[string]*geometry.Shape

	generator *candidateGenerator
	routers   *router.Family
	factory   *network.ArtificialLinkFactory

	stopLoops    map[string]*network.Link
	connections  map[string]*network.Link
	freespeedReq map[string]float64
}

// MapSchedule maps the schedule onto the network in place and returns
// the mapping report. Configuration and missing-input errors abort the
// batch before any mutation; per-route failures are isolated and
// reported. The context cancels the batch between routes; a cancelled
// batch discards all partial work and leaves the inputs untouched.
func MapSchedule(ctx context.Context, s *schedule.Schedule, net *network.Network, opts *Options) (*MappingResult, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	cfg := opts.resolveConfig()
	if err := cfg.Validate(); err != nil {
		return nil, mapErrors.NewConfigError(err.Error()).WithCause(err)
	}
	log := opts.resolveLogger(cfg)

	if err := checkInputs(s); err != nil {
		return nil, err
	}

	b := &batch{
		cfg:      cfg,
		log:      log,
		schedule: s,
		net:      net,
		shapes:   opts.Shapes,
		generator: &candidateGenerator{
			index:    network.NewSpatialIndex(net, cfg.Mapper.MaxLinkCandidateDistance),
			settings: &cfg.Mapper,
		},
		factory:      network.NewArtificialLinkFactory(net),
		stopLoops:    make(map[string]*network.Link),
		connections:  make(map[string]*network.Link),
		freespeedReq: make(map[string]float64),
	}

	routers, err := router.NewFamily(net, cfg)
	if err != nil {
		return nil, mapErrors.NewConfigError(err.Error()).WithCause(err)
	}
	b.routers = routers

	start := time.Now()
	log.MappingStart(len(s.LineIDs()), s.NumRoutes(), net.NumLinks())

	tasks, skipped := b.collectTasks()

	solutions, err := b.solveAll(ctx, tasks)
	if err != nil {
		return nil, err
	}

	b.commit(solutions)
	for _, sol := range skipped {
		b.schedule.Line(sol.lineID).RemoveRoute(sol.routeID)
	}
	for _, lineID := range b.schedule.LineIDs() {
		if len(b.schedule.Line(lineID).RouteIDs()) == 0 {
			b.schedule.RemoveLine(lineID)
		}
	}
	b.finalize()

	result := NewMappingResult()
	all := make([]*routeSolution, 0, len(solutions)+len(skipped))
	for _, sol := range solutions {
		if sol != nil {
			all = append(all, sol)
		}
	}
	all = append(all, skipped...)
	sort.Slice(all, func(i, j int) bool {
		if all[i].lineID != all[j].lineID {
			return all[i].lineID < all[j].lineID
		}
		return all[i].routeID < all[j].routeID
	})
	for _, sol := range all {
		if sol.status != StatusMapped {
			log.RouteUnmappable(sol.lineID, sol.routeID, sol.reason)
		}
		result.AddEntry(sol.entry())
	}
	for _, id := range b.factory.CreatedLinkIDs() {
		if net.HasLink(id) {
			result.ArtificialLinks = append(result.ArtificialLinks, id)
		}
	}
	result.ProcessingTime = time.Since(start)

	log.MappingComplete(result.ProcessingTime, result.RoutesMapped, result.RoutesUnmappable, result.RoutesSkipped)
	return result, nil
}

// collectTasks enumerates routes in deterministic (line, route) order.
// Routes whose schedule mode has no routing assignment are skipped.
func (b *batch) collectTasks() ([]routeTask, []*routeSolution) {
	var tasks []routeTask
	var skipped []*routeSolution
	idx := 0
	for _, line := range b.schedule.Lines() {
		for _, route := range line.Routes() {
			if !b.routers.HasMode(route.Mode) {
				skipped = append(skipped, &routeSolution{
					lineID:  line.ID,
					routeID: route.ID,
					route:   route,
					status:  StatusSkipped,
					reason:  "no mode routing assignment for schedule mode " + route.Mode,
				})
				continue
			}
			tasks = append(tasks, routeTask{idx: idx, line: line, route: route})
			idx++
		}
	}
	return tasks, skipped
}

// checkInputs verifies the schedule's internal references before any
// work begins. A route referencing a facility unknown to the schedule
// is a fatal input error.
func checkInputs(s *schedule.Schedule) error {
	for _, line := range s.Lines() {
		for _, route := range line.Routes() {
			for _, stop := range route.Stops {
				if stop.Facility == nil {
					return mapErrors.NewMissingInputError("transitRouteStop", "",
						"route stop without facility").WithRoute(line.ID, route.ID)
				}
				if s.Facility(stop.Facility.ID) != stop.Facility {
					return mapErrors.NewMissingInputError("stopFacility", stop.Facility.ID,
						"route references a stop facility not present in the schedule").
						WithRoute(line.ID, route.ID).
						WithSeverity(types.CRITICAL)
				}
			}
		}
	}
	return nil
}
