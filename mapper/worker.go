package mapper

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/transit-network-mapper/network"
	"github.com/theoremus-urban-solutions/transit-network-mapper/pseudograph"
	"github.com/theoremus-urban-solutions/transit-network-mapper/router"
	"github.com/theoremus-urban-solutions/transit-network-mapper/schedule"
	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// routeTask is one unit of work of the parallel solve phase.
type routeTask struct {
	idx   int
	line  *schedule.Line
	route *schedule.Route
}

// routeSolution carries one route's solver output into the commit
// phase: the chosen candidate per stop and the inter-stop link paths.
// A nil segment means no mode-legal path joins the pair; the
// materializer bridges it with an artificial connection link.
type routeSolution struct {
	lineID  string
	routeID string
	route   *schedule.Route

	chosen   []*LinkCandidate
	segments [][]*network.Link

	status RouteStatus
	reason string
}

// solveAll runs the parallel solve phase: workers draw route tasks
// from a shared queue and solve independently against the read-only
// inputs. Results are slotted by task index, so the outcome is
// independent of worker count and scheduling.
func (b *batch) solveAll(ctx context.Context, tasks []routeTask) ([]*routeSolution, error) {
	solutions := make([]*routeSolution, len(tasks))

	queue := make(chan routeTask)
	var wg sync.WaitGroup

	workers := b.cfg.Mapper.NThreads
	if workers > len(tasks) && len(tasks) > 0 {
		workers = len(tasks)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				if ctx.Err() != nil {
					continue
				}
				solutions[task.idx] = b.solveRoute(ctx, task.line, task.route)
			}
		}()
	}

	for _, task := range tasks {
		queue <- task
	}
	close(queue)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return solutions, nil
}

// solveRoute generates candidates, builds the route's pseudo-graph and
// solves it. All failures are isolated to the route.
func (b *batch) solveRoute(ctx context.Context, line *schedule.Line, route *schedule.Route) *routeSolution {
	sol := &routeSolution{
		lineID:  line.ID,
		routeID: route.ID,
		route:   route,
		status:  StatusMapped,
	}

	deadline := time.Time{}
	if b.cfg.Mapper.RouteTimeoutSeconds > 0 {
		deadline = time.Now().Add(time.Duration(b.cfg.Mapper.RouteTimeoutSeconds) * time.Second)
	}
	expired := func() bool {
		return !deadline.IsZero() && time.Now().After(deadline)
	}

	if len(route.Stops) == 0 {
		return sol.unmappable("route has no stops")
	}

	networkModes := b.networkModesFor(route.Mode)

	rt, err := b.routers.ForMode(route.Mode)
	if err != nil {
		return sol.unmappable(err.Error())
	}
	if route.ShapeID != "" {
		if shape, ok := b.shapes[route.ShapeID]; ok {
			rt = rt.WithPolicy(router.NewShapeBiasedCost(b.routers.Policy(), shape))
		}
	}

	// candidate generation per stop, direction-aware where the stop
	// sequence gives a travel direction
	azimuths := travelAzimuths(route.Stops)
	layers := make([][]*LinkCandidate, len(route.Stops))
	for i, stop := range route.Stops {
		cands := b.generator.generate(stop.Facility, networkModes, azimuths[i])
		if len(cands) == 0 {
			return sol.unmappable(fmt.Sprintf("no link candidates for stop %s", stop.Facility.ID))
		}
		layers[i] = cands
	}
	if expired() {
		return sol.unmappable("per-route time budget exceeded")
	}

	// pseudo-graph construction
	sizes := make([]int, len(layers))
	for i, layer := range layers {
		sizes[i] = len(layer)
	}
	graph, err := pseudograph.New(sizes)
	if err != nil {
		return sol.unmappable(err.Error())
	}
	for j, c := range layers[0] {
		graph.SetEntryWeight(j, b.attachmentPenalty(c))
	}
	for layer := 0; layer < len(layers)-1; layer++ {
		for from, a := range layers[layer] {
			for to, c := range layers[layer+1] {
				w, _, ok := b.connectionWeight(rt, a, c)
				if !ok {
					continue
				}
				if math.IsNaN(w) {
					return sol.unmappable(fmt.Sprintf(
						"nonfinite routing cost between stops %s and %s",
						a.Facility.ID, c.Facility.ID))
				}
				graph.SetEdgeWeight(layer, from, to, w)
			}
		}
		if expired() {
			return sol.unmappable("per-route time budget exceeded")
		}
		if ctx.Err() != nil {
			return sol.unmappable("batch cancelled")
		}
	}

	chosen, err := graph.Solve()
	if err != nil {
		return sol.unmappable("no candidate combination connects all stops")
	}

	sol.chosen = make([]*LinkCandidate, len(chosen))
	for i, idx := range chosen {
		sol.chosen[i] = layers[i][idx]
	}

	// resolve the inter-stop paths of the winning combination; the
	// router answers from its per-source cache
	sol.segments = make([][]*network.Link, len(sol.chosen)-1)
	for i := 0; i < len(sol.chosen)-1; i++ {
		_, segment, ok := b.connectionWeight(rt, sol.chosen[i], sol.chosen[i+1])
		if !ok {
			return sol.unmappable("no candidate combination connects all stops")
		}
		sol.segments[i] = segment
	}

	return sol
}

func (sol *routeSolution) unmappable(reason string) *routeSolution {
	sol.status = StatusUnmappable
	sol.reason = reason
	sol.chosen = nil
	sol.segments = nil
	return sol
}

func (sol *routeSolution) entry() RouteEntry {
	severity := types.INFO
	if sol.status != StatusMapped {
		severity = types.WARNING
	}
	return RouteEntry{
		LineID:   sol.lineID,
		RouteID:  sol.routeID,
		Status:   sol.status,
		Reason:   sol.reason,
		Severity: severity,
	}
}

// connectionWeight returns the pseudo-graph edge weight from candidate
// a to candidate c of the next stop, plus the link walk between them.
// A non-nil empty walk means the links are adjacent or identical; a
// nil walk means an artificial connection link bridges the pair at
// commit time. ok is false when the pair cannot be connected at all.
func (b *batch) connectionWeight(rt *router.Router, a, c *LinkCandidate) (float64, []*network.Link, bool) {
	penalty := b.attachmentPenalty(c)

	if !a.Artificial && !c.Artificial {
		if a.Link == c.Link {
			// the stop is served twice on the same link; no routing term
			return penalty, []*network.Link{}, true
		}
		cost, path := rt.LeastCost(a.Link, c.Link)
		if !math.IsInf(cost, 1) {
			if path == nil {
				path = []*network.Link{}
			}
			return penalty + cost, path, true
		}
	}

	// artificial candidate involved, or no mode-legal path
	if !b.cfg.Mapper.UseArtificialLinks {
		return 0, nil, false
	}
	beeline := a.Facility.Coord.DistanceTo(c.Facility.Coord)
	return penalty + beeline*artificialConnectionFactor, nil, true
}

// attachmentPenalty is the stop-attachment cost of choosing a
// candidate: strictly increasing in the stop-to-link distance, plus a
// large constant for artificial candidates.
func (b *batch) attachmentPenalty(c *LinkCandidate) float64 {
	penalty := 0.0
	if b.cfg.Mapper.RoutingWithCandidateDistance {
		penalty += candidateDistanceCostFactor * c.Distance * c.Distance
	}
	if c.Artificial {
		penalty += artificialLinkPenalty
	}
	return penalty
}

func (b *batch) networkModesFor(scheduleMode string) map[string]struct{} {
	modes := make(map[string]struct{})
	for _, m := range b.cfg.Mapper.ModeRoutingAssignment[scheduleMode] {
		modes[m] = struct{}{}
	}
	return modes
}
