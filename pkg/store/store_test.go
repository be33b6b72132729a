package store

import (
	"testing"

	"mrouter/pkg/labels"
)

// buildTestGraph makes a small square of 4 nodes connected by 4 bidirectional
// ways, with one extra one-way spur:
//
//	200 ---- 300
//	 |        |
//	100 ---- 400 ---- 500 (one-way 400->500, no bicycle exception)
func buildTestGraph() *InMemoryStore {
	data := GraphData{
		Nodes: []Node{
			{Id: 100, Lat: 1.000, Lon: 103.000},
			{Id: 200, Lat: 1.001, Lon: 103.000},
			{Id: 300, Lat: 1.001, Lon: 103.001},
			{Id: 400, Lat: 1.000, Lon: 103.001},
			{Id: 500, Lat: 1.000, Lon: 103.002},
		},
		Ways: []WayData{
			{Id: 1, Name: "west side", NodeIds: []NodeId{100, 200}, Bidirectional: true,
				Forward: labels.WayLabels{Road: labels.RoadLocal}, Reverse: labels.WayLabels{Road: labels.RoadLocal}},
			{Id: 2, Name: "north side", NodeIds: []NodeId{200, 300}, Bidirectional: true,
				Forward: labels.WayLabels{Road: labels.RoadLocal}, Reverse: labels.WayLabels{Road: labels.RoadLocal}},
			{Id: 3, Name: "east side", NodeIds: []NodeId{300, 400}, Bidirectional: true,
				Forward: labels.WayLabels{Road: labels.RoadLocal}, Reverse: labels.WayLabels{Road: labels.RoadLocal}},
			{Id: 4, Name: "south side", NodeIds: []NodeId{100, 400}, Bidirectional: true,
				Forward: labels.WayLabels{Road: labels.RoadLocal}, Reverse: labels.WayLabels{Road: labels.RoadLocal}},
			{Id: 5, Name: "one way spur", NodeIds: []NodeId{400, 500}, Bidirectional: false,
				Forward: labels.WayLabels{Road: labels.RoadArterial}, Reverse: labels.WayLabels{Road: labels.RoadArterial}},
		},
	}
	return Build(data)
}

func TestExpandNodeBidirectional(t *testing.T) {
	s := buildTestGraph()

	edges := s.ExpandNode(100)
	if len(edges) != 2 {
		t.Fatalf("node 100 has %d outgoing edges, want 2 (to 200 and 400)", len(edges))
	}

	var sawEdge = map[NodeId]bool{}
	for _, e := range edges {
		sawEdge[e.To] = true
		if e.Length <= 0 {
			t.Errorf("edge to %d has non-positive length %f", e.To, e.Length)
		}
	}
	if !sawEdge[200] || !sawEdge[400] {
		t.Errorf("expected edges to both 200 and 400, got %v", sawEdge)
	}
}

func TestExpandNodeOneWay(t *testing.T) {
	s := buildTestGraph()

	fromStart := s.ExpandNode(400)
	var toEnd bool
	for _, e := range fromStart {
		if e.To == 500 {
			toEnd = true
		}
	}
	if !toEnd {
		t.Fatal("expected a one-way edge 400 -> 500")
	}

	fromEnd := s.ExpandNode(500)
	for _, e := range fromEnd {
		if e.To == 400 {
			t.Fatal("one-way spur should not produce a reverse edge 500 -> 400")
		}
	}
}

func TestGetWayLabelsSignedId(t *testing.T) {
	s := buildTestGraph()

	fwd, ok := s.GetWayLabels(1)
	if !ok {
		t.Fatal("expected forward labels for way 1")
	}
	rev, ok := s.GetWayLabels(-1)
	if !ok {
		t.Fatal("expected reverse labels for way -1")
	}
	if fwd.Road != rev.Road {
		t.Error("forward/reverse labels should agree on road class for a bidirectional way here")
	}
}

func TestWayNamesIgnoresSign(t *testing.T) {
	s := buildTestGraph()
	names := s.WayNames([]WayId{-1, 2})
	if names[1] != "west side" {
		t.Errorf("WayNames[1] = %q, want %q", names[1], "west side")
	}
	if names[2] != "north side" {
		t.Errorf("WayNames[2] = %q, want %q", names[2], "north side")
	}
}

func TestSnapToGraphFindsNearestNode(t *testing.T) {
	s := buildTestGraph()

	primary, _, err := s.SnapToGraph(1.0002, 103.0002)
	if err != nil {
		t.Fatalf("SnapToGraph() error: %v", err)
	}
	if primary.Node.Id != 100 {
		t.Errorf("snapped to node %d, want 100 (closest to query point)", primary.Node.Id)
	}
}

func TestSnapToGraphFailsFarFromGraph(t *testing.T) {
	s := buildTestGraph()

	_, _, err := s.SnapToGraph(10.0, 10.0)
	if err == nil {
		t.Fatal("expected SnapFailedError for a point far from any way")
	}
	if _, ok := err.(*SnapFailedError); !ok {
		t.Fatalf("expected *SnapFailedError, got %T", err)
	}
}
