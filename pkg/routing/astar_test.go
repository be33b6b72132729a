package routing

import (
	"context"
	"testing"

	"mrouter/pkg/cost"
	"mrouter/pkg/labels"
	"mrouter/pkg/store"
)

// buildSquareGraph makes a 4-node loop with one cheap (bike track) side and
// three expensive (arterial) sides, so A* and Dijkstra have a real choice to
// make:
//
//	200 ---- 300
//	 |(track) |
//	100 ---- 400
func buildSquareGraph() *store.InMemoryStore {
	cheap := labels.WayLabels{Cycleway: labels.CyclewayTrack, Road: labels.RoadBike}
	expensive := labels.WayLabels{Road: labels.RoadArterial}

	data := store.GraphData{
		Nodes: []store.Node{
			{Id: 100, Lat: 1.000, Lon: 103.000},
			{Id: 200, Lat: 1.001, Lon: 103.000},
			{Id: 300, Lat: 1.001, Lon: 103.001},
			{Id: 400, Lat: 1.000, Lon: 103.001},
		},
		Ways: []store.WayData{
			{Id: 1, NodeIds: []store.NodeId{100, 200}, Bidirectional: true, Forward: cheap, Reverse: cheap},
			{Id: 2, NodeIds: []store.NodeId{200, 300}, Bidirectional: true, Forward: expensive, Reverse: expensive},
			{Id: 3, NodeIds: []store.NodeId{300, 400}, Bidirectional: true, Forward: expensive, Reverse: expensive},
			{Id: 4, NodeIds: []store.NodeId{100, 400}, Bidirectional: true, Forward: expensive, Reverse: expensive},
		},
	}
	return store.Build(data)
}

func TestRouteFindsLowestCostPath(t *testing.T) {
	s := buildSquareGraph()
	eng := NewEngine(s)
	model := cost.DefaultModel()

	route, _, err := eng.Route(context.Background(), 1.000, 103.000, 1.001, 103.001, model, 0)
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}

	// Steps[0] is the synthetic leg from StartNode onto the snapped node 100.
	if len(route.Steps) < 2 {
		t.Fatal("expected the synthetic start leg plus at least one real route step")
	}
	if route.Steps[1].Way != 1 {
		t.Errorf("first real step uses way %d, want way 1 (the cheap track)", route.Steps[1].Way)
	}
}

func TestRouteWithHeuristicMatchesDijkstraCost(t *testing.T) {
	s := buildSquareGraph()
	eng := NewEngine(s)
	model := cost.DefaultModel()

	dijkstra, _, err := eng.Route(context.Background(), 1.000, 103.000, 1.001, 103.001, model, 0)
	if err != nil {
		t.Fatalf("Dijkstra Route() error: %v", err)
	}
	astar, _, err := eng.Route(context.Background(), 1.000, 103.000, 1.001, 103.001, model, DefaultHeuristicWeight)
	if err != nil {
		t.Fatalf("A* Route() error: %v", err)
	}

	if diff := astar.TotalCost - dijkstra.TotalCost; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("A* total cost %v differs from Dijkstra's %v at the default heuristic weight", astar.TotalCost, dijkstra.TotalCost)
	}
}

func TestRouteNoPathReturnsNoRouteFound(t *testing.T) {
	data := store.GraphData{
		Nodes: []store.Node{
			{Id: 1, Lat: 1.000, Lon: 103.000},
			{Id: 2, Lat: 1.001, Lon: 103.000},
			{Id: 10, Lat: 5.000, Lon: 110.000},
			{Id: 11, Lat: 5.001, Lon: 110.000},
		},
		Ways: []store.WayData{
			{Id: 1, NodeIds: []store.NodeId{1, 2}, Bidirectional: true},
			{Id: 2, NodeIds: []store.NodeId{10, 11}, Bidirectional: true},
		},
	}
	s := store.Build(data)
	eng := NewEngine(s)

	_, _, err := eng.Route(context.Background(), 1.000, 103.000, 5.000, 110.000, cost.DefaultModel(), 0)
	if err == nil {
		t.Fatal("expected an error routing between two disconnected components")
	}
	if _, ok := err.(*NoRouteFoundError); !ok {
		t.Fatalf("expected *NoRouteFoundError, got %T: %v", err, err)
	}
}

func TestExploreRespectsMaxDepth(t *testing.T) {
	s := buildSquareGraph()
	eng := NewEngine(s)

	traversal, meta, err := eng.Explore(context.Background(), 1.000, 103.000, 1, cost.DefaultModel())
	if err != nil {
		t.Fatalf("Explore() error: %v", err)
	}
	if meta.MaxDepth != 1 {
		t.Errorf("Metadata.MaxDepth = %d, want 1", meta.MaxDepth)
	}
	for _, seg := range traversal.Segments {
		if seg.Depth > 1 {
			t.Errorf("segment to node %d has depth %d, exceeding max depth 1", seg.To, seg.Depth)
		}
	}
}

func TestExploreVisitsEachNodeOnce(t *testing.T) {
	s := buildSquareGraph()
	eng := NewEngine(s)

	traversal, _, err := eng.Explore(context.Background(), 1.000, 103.000, 10, cost.DefaultModel())
	if err != nil {
		t.Fatalf("Explore() error: %v", err)
	}

	seen := make(map[NodeId]bool)
	for _, seg := range traversal.Segments {
		if seen[seg.To] {
			t.Errorf("node %d visited more than once; first-visit-wins should prevent this", seg.To)
		}
		seen[seg.To] = true
	}
}
