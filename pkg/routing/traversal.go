// Package routing implements the A*/Dijkstra/depth-bounded traversal engine
// that runs queries against a pkg/store.Store.
package routing

import (
	"mrouter/pkg/cost"
	"mrouter/pkg/labels"
	"mrouter/pkg/store"
)

// NodeId and WayId are re-exported so callers of this package never need to
// import pkg/store directly just to name a node or way.
type NodeId = store.NodeId
type WayId = store.WayId

// DefaultHeuristicWeight is used when a query supplies none. A weight is
// admissible (never overestimates true cost) only while it does not exceed
// the cheapest possible cost factor any way can carry; under the default
// model that is 0.35 (a protected bike track on a bike-only road), so 0.75
// is not admissible and can return a slightly suboptimal route in exchange
// for fewer node expansions.
const DefaultHeuristicWeight = 0.75

// TraversalSegment is one directed hop the engine actually traversed: the
// edge it crossed, and the accumulated cost and depth bookkeeping at the
// moment it was settled. The same shape serves as both a route step
// (before merging, see RouteStep) and an entry in a full Explore traversal.
type TraversalSegment struct {
	From     NodeId
	To       NodeId
	Way      WayId
	Labels   labels.WayLabels
	Distance float64 // meters
	EdgeCost float32 // Distance * cost.Model.Factor(Labels)
	GAtTo    float32 // accumulated cost from the search origin through this edge
	Depth    int
}

// predecessor records, for each visited node, the best edge found so far
// that reaches it.
type predecessor struct {
	seg TraversalSegment
}

// traversalContext is the per-query mutable search state. It is never
// shared across queries — spec's concurrency model gives each query its own
// context so concurrent routes and explores need no locking against each
// other or against the shared, immutable Store.
type traversalContext struct {
	store           store.Store
	model           cost.Model
	heuristicWeight float32

	queue     openSet
	cameFrom  map[NodeId]predecessor
	bestG     map[NodeId]float32
	costRange [2]float32 // [min, max] edge cost factor observed while expanding
}

func newTraversalContext(s store.Store, model cost.Model, heuristicWeight float32) *traversalContext {
	return &traversalContext{
		store:           s,
		model:           model,
		heuristicWeight: heuristicWeight,
		cameFrom:        make(map[NodeId]predecessor),
		bestG:           make(map[NodeId]float32),
		costRange:       [2]float32{-1, -1},
	}
}

func (c *traversalContext) observeFactor(f float32) {
	if c.costRange[0] < 0 || f < c.costRange[0] {
		c.costRange[0] = f
	}
	if c.costRange[1] < 0 || f > c.costRange[1] {
		c.costRange[1] = f
	}
}

// relax offers a candidate path to `to` with cost g, arriving via edge seg.
// It pushes a new open-set entry only if g improves on the best known cost
// to `to` (lazy deletion: stale entries already in the heap are simply
// discarded when popped, rather than updated in place).
func (c *traversalContext) relax(to NodeId, g float32, heuristic float32, seg TraversalSegment) {
	if best, ok := c.bestG[to]; ok && g >= best {
		return
	}
	c.bestG[to] = g
	c.cameFrom[to] = predecessor{seg: seg}
	c.queue.Push(openEntry{priority: g + heuristic, toNode: to, gAtNode: g})
}

