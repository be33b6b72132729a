package routing

import "mrouter/pkg/labels"

// RouteStep is one leg of a reconstructed route: a run of consecutive
// TraversalSegments that share a way id, merged into a single entry the way
// a caller displaying turn-by-turn directions wants them (one line per
// street, not one per OSM node).
type RouteStep struct {
	Way       WayId
	Labels    labels.WayLabels
	EntryNode NodeId
	ExitNode  NodeId
	Distance  float64
	Cost      float32
}

// Route is a complete start-to-end path.
type Route struct {
	Steps         []RouteStep
	TotalDistance float64
	TotalCost     float32
}

// Traversal is the full set of edges a depth-bounded Explore visited, before
// any merging — callers inspecting search shape (e.g. a debug map overlay)
// want the raw per-edge detail, not route steps.
type Traversal struct {
	Segments []TraversalSegment
}

// Metadata reports bookkeeping about how a search ran: the deepest hop count
// it reached, and the range of per-edge cost factors it observed. Both
// Route and Explore return one of these alongside their result.
type Metadata struct {
	MaxDepth  int
	CostRange [2]float32
}

// buildSteps merges a reconstructed, start-to-end ordered slice of
// TraversalSegments into RouteSteps, combining consecutive segments that
// share a way id into one step.
func buildSteps(segs []TraversalSegment) []RouteStep {
	if len(segs) == 0 {
		return nil
	}

	steps := make([]RouteStep, 0, len(segs))
	cur := RouteStep{
		Way:       segs[0].Way,
		Labels:    segs[0].Labels,
		EntryNode: segs[0].From,
		ExitNode:  segs[0].To,
		Distance:  segs[0].Distance,
		Cost:      segs[0].EdgeCost,
	}

	for _, seg := range segs[1:] {
		if seg.Way == cur.Way {
			cur.ExitNode = seg.To
			cur.Distance += seg.Distance
			cur.Cost += seg.EdgeCost
			continue
		}
		steps = append(steps, cur)
		cur = RouteStep{
			Way:       seg.Way,
			Labels:    seg.Labels,
			EntryNode: seg.From,
			ExitNode:  seg.To,
			Distance:  seg.Distance,
			Cost:      seg.EdgeCost,
		}
	}
	steps = append(steps, cur)

	return steps
}
