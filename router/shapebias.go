package router

import (
	"math"

	"github.com/theoremus-urban-solutions/transit-network-mapper/geometry"
	"github.com/theoremus-urban-solutions/transit-network-mapper/network"
)

const (
	// shapeTolerance is the half-width in meters of the band around a
	// shape within which links are charged their unbiased cost.
	shapeTolerance = 50.0
	// shapeMaxFactor caps the multiplicative penalty for links far
	// from the shape, so routing degrades to plain shortest-path when
	// the shape is unfaithful.
	shapeMaxFactor = 3.0
)

// ShapeBiasedCost decorates a cost policy with a multiplicative factor
// based on the link's minimum distance to a route shape. Links inside
// the tolerance band keep their base cost; beyond it the factor grows
// linearly with distance up to shapeMaxFactor.
//
// An instance serves one route solve on one goroutine; the per-link
// factor cache is not synchronized.
type ShapeBiasedCost struct {
	base    CostPolicy
	shape   *geometry.Shape
	factors map[*network.Link]float64
}

// NewShapeBiasedCost wraps a base policy with bias toward the shape.
func NewShapeBiasedCost(base CostPolicy, shape *geometry.Shape) *ShapeBiasedCost {
	return &ShapeBiasedCost{
		base:    base,
		shape:   shape,
		factors: make(map[*network.Link]float64),
	}
}

func (c *ShapeBiasedCost) Name() string {
	return c.base.Name() + "+shape:" + c.shape.ID
}

func (c *ShapeBiasedCost) LinkCost(l *network.Link) float64 {
	return c.base.LinkCost(l) * c.factor(l)
}

func (c *ShapeBiasedCost) factor(l *network.Link) float64 {
	if f, ok := c.factors[l]; ok {
		return f
	}
	d := c.shape.MinDistance(l.Center())
	f := 1.0
	if d > shapeTolerance {
		f = math.Min(1+(d-shapeTolerance)/shapeTolerance, shapeMaxFactor)
	}
	c.factors[l] = f
	return f
}
