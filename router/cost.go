// Package router provides the per-mode least-cost-path oracle the
// mapper queries between stop link candidates: a mode-restricted view
// of the network, a pluggable travel cost policy, an optional
// shape-bias decorator, and per-source result caching.
package router

import (
	"fmt"

	"github.com/theoremus-urban-solutions/transit-network-mapper/config"
	"github.com/theoremus-urban-solutions/transit-network-mapper/network"
)

// CostPolicy defines the travel cost of traversing a single link.
// Policies of a router shared across workers must be safe for
// concurrent use; a ShapeBiasedCost serves a single route solve.
type CostPolicy interface {
	Name() string
	LinkCost(l *network.Link) float64
}

// LinkLengthCost charges each link its length.
type LinkLengthCost struct{}

func (LinkLengthCost) Name() string {
	return config.TravelCostLinkLength
}

func (LinkLengthCost) LinkCost(l *network.Link) float64 {
	return l.Length
}

// TravelTimeCost charges each link its freespeed travel time.
type TravelTimeCost struct{}

func (TravelTimeCost) Name() string {
	return config.TravelCostTravelTime
}

func (TravelTimeCost) LinkCost(l *network.Link) float64 {
	return l.TravelTime()
}

// PolicyForType returns the cost policy for a travelCostType
// configuration value.
func PolicyForType(travelCostType string) (CostPolicy, error) {
	switch travelCostType {
	case config.TravelCostLinkLength:
		return LinkLengthCost{}, nil
	case config.TravelCostTravelTime:
		return TravelTimeCost{}, nil
	default:
		return nil, fmt.Errorf("unknown travel cost type %q", travelCostType)
	}
}
