package routing

import (
	"context"

	"mrouter/pkg/cost"
	"mrouter/pkg/geo"
	"mrouter/pkg/store"
)

// cancelCheckInterval is how many pops the search loop makes between context
// cancellation checks — checking every pop would make ctx.Err() the
// bottleneck on a hot loop that otherwise does plain map/heap work.
const cancelCheckInterval = 1024

// Engine runs route and explore queries against a single Store. It holds no
// per-query state itself — every call builds its own traversalContext — so
// one Engine is safely shared across concurrent callers.
type Engine struct {
	store store.Store
}

// NewEngine returns an Engine querying s.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Route finds the lowest-cost path from (startLat, startLon) to
// (endLat, endLon) under model, using A* with the given heuristic weight.
// A heuristicWeight of 0 degrades to plain Dijkstra (always optimal); the
// package default (see DefaultHeuristicWeight) trades a small admissibility
// margin for materially fewer node expansions.
func (e *Engine) Route(ctx context.Context, startLat, startLon, endLat, endLon float64, model cost.Model, heuristicWeight float32) (Route, Metadata, error) {
	startPrimary, startSecondary, err := e.store.SnapToGraph(startLat, startLon)
	if err != nil {
		return Route{}, Metadata{}, err
	}
	endPrimary, endSecondary, err := e.store.SnapToGraph(endLat, endLon)
	if err != nil {
		return Route{}, Metadata{}, err
	}

	tctx := newTraversalContext(e.store, model, heuristicWeight)

	seedStart := func(n store.Neighbor) {
		g := float32(n.DistToQuery)
		h := tctx.heuristicWeight * float32(haversineNode(e.store, n.Node.Id, endLat, endLon))
		seg := TraversalSegment{
			From: store.StartNode, To: n.Node.Id, Way: 0,
			Distance: n.DistToQuery, EdgeCost: g, GAtTo: g, Depth: 1,
		}
		tctx.relax(n.Node.Id, g, h, seg)
	}
	seedStart(startPrimary)
	if startSecondary != nil {
		seedStart(*startSecondary)
	}

	targetDist := map[NodeId]float64{endPrimary.Node.Id: endPrimary.DistToQuery}
	if endSecondary != nil {
		targetDist[endSecondary.Node.Id] = endSecondary.DistToQuery
	}

	pops := 0
	for tctx.queue.Len() > 0 {
		pops++
		if pops%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Route{}, Metadata{}, &CancelledError{Err: err}
			}
		}

		entry := tctx.queue.Pop()
		if entry.gAtNode > tctx.bestG[entry.toNode] {
			continue // stale, a better path to this node was already found
		}

		if entry.toNode == store.EndNode {
			segs := reconstruct(tctx, store.EndNode)
			steps := buildSteps(segs)
			return Route{Steps: steps, TotalDistance: sumDistance(segs), TotalCost: entry.gAtNode},
				Metadata{MaxDepth: maxDepth(segs), CostRange: tctx.costRange}, nil
		}

		if dist, isTarget := targetDist[entry.toNode]; isTarget {
			g := entry.gAtNode + float32(dist)
			depth := tctx.cameFrom[entry.toNode].seg.Depth + 1
			seg := TraversalSegment{
				From: entry.toNode, To: store.EndNode, Way: 0,
				Distance: dist, EdgeCost: float32(dist), GAtTo: g, Depth: depth,
			}
			tctx.relax(store.EndNode, g, 0, seg)
		}

		for _, edge := range e.store.ExpandNode(entry.toNode) {
			factor := model.Factor(edge.Labels)
			tctx.observeFactor(factor)
			g := entry.gAtNode + float32(edge.Length)*factor
			h := tctx.heuristicWeight * float32(haversineNode(e.store, edge.To, endLat, endLon))
			depth := tctx.cameFrom[entry.toNode].seg.Depth + 1
			seg := TraversalSegment{
				From: entry.toNode, To: edge.To, Way: edge.Way, Labels: edge.Labels,
				Distance: edge.Length, EdgeCost: float32(edge.Length) * factor, GAtTo: g, Depth: depth,
			}
			tctx.relax(edge.To, g, h, seg)
		}
	}

	return Route{}, Metadata{}, &NoRouteFoundError{Start: store.StartNode, End: store.EndNode}
}

// Explore runs a depth-bounded, heuristic-free traversal from (lat, lon),
// visiting every reachable node up to maxDepth hops and recording, for each,
// the first (and therefore cheapest, since this degrades to Dijkstra order)
// edge that reached it.
func (e *Engine) Explore(ctx context.Context, lat, lon float64, maxDepth int, model cost.Model) (Traversal, Metadata, error) {
	primary, secondary, err := e.store.SnapToGraph(lat, lon)
	if err != nil {
		return Traversal{}, Metadata{}, err
	}

	tctx := newTraversalContext(e.store, model, 0)

	seed := func(n store.Neighbor) {
		g := float32(n.DistToQuery)
		seg := TraversalSegment{
			From: store.StartNode, To: n.Node.Id, Way: 0,
			Distance: n.DistToQuery, EdgeCost: g, GAtTo: g, Depth: 1,
		}
		tctx.relax(n.Node.Id, g, 0, seg)
	}
	seed(primary)
	if secondary != nil {
		seed(*secondary)
	}

	visited := make(map[NodeId]bool)
	var segs []TraversalSegment

	pops := 0
	for tctx.queue.Len() > 0 {
		pops++
		if pops%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Traversal{}, Metadata{}, &CancelledError{Err: err}
			}
		}

		entry := tctx.queue.Pop()
		if entry.gAtNode > tctx.bestG[entry.toNode] {
			continue
		}
		if visited[entry.toNode] {
			continue // first-visit-wins: later arrivals at an already-settled node are dropped
		}
		visited[entry.toNode] = true

		pred := tctx.cameFrom[entry.toNode]
		segs = append(segs, pred.seg)

		if pred.seg.Depth >= maxDepth {
			continue
		}

		for _, edge := range e.store.ExpandNode(entry.toNode) {
			if visited[edge.To] {
				continue
			}
			factor := model.Factor(edge.Labels)
			tctx.observeFactor(factor)
			g := entry.gAtNode + float32(edge.Length)*factor
			seg := TraversalSegment{
				From: entry.toNode, To: edge.To, Way: edge.Way, Labels: edge.Labels,
				Distance: edge.Length, EdgeCost: float32(edge.Length) * factor, GAtTo: g, Depth: pred.seg.Depth + 1,
			}
			tctx.relax(edge.To, g, 0, seg)
		}
	}

	reached := 0
	for _, s := range segs {
		if s.Depth > reached {
			reached = s.Depth
		}
	}
	return Traversal{Segments: segs}, Metadata{MaxDepth: reached, CostRange: tctx.costRange}, nil
}

// reconstruct walks cameFrom backward from target to the synthetic start
// node, returning the path in start-to-end order.
func reconstruct(tctx *traversalContext, target NodeId) []TraversalSegment {
	var rev []TraversalSegment
	cur := target
	for {
		pred, ok := tctx.cameFrom[cur]
		if !ok {
			break
		}
		rev = append(rev, pred.seg)
		if pred.seg.From == store.StartNode {
			break
		}
		cur = pred.seg.From
	}
	out := make([]TraversalSegment, len(rev))
	for i, seg := range rev {
		out[len(rev)-1-i] = seg
	}
	return out
}

func sumDistance(segs []TraversalSegment) float64 {
	var d float64
	for _, s := range segs {
		d += s.Distance
	}
	return d
}

func maxDepth(segs []TraversalSegment) int {
	m := 0
	for _, s := range segs {
		if s.Depth > m {
			m = s.Depth
		}
	}
	return m
}

func haversineNode(s store.Store, id NodeId, lat, lon float64) float64 {
	n, ok := s.NodeCoords(id)
	if !ok {
		return 0
	}
	return geo.Haversine(n.Lat, n.Lon, lat, lon)
}
