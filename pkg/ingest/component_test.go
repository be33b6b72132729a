package ingest

import (
	"testing"

	"mrouter/pkg/store"
)

func TestFilterToLargestComponent(t *testing.T) {
	// Main component: 1-2-3. Isolated fragment: 10-11.
	data := store.GraphData{
		Nodes: []store.Node{
			{Id: 1, Lat: 1.0, Lon: 103.0},
			{Id: 2, Lat: 1.001, Lon: 103.0},
			{Id: 3, Lat: 1.002, Lon: 103.0},
			{Id: 10, Lat: 5.0, Lon: 110.0},
			{Id: 11, Lat: 5.001, Lon: 110.0},
		},
		Ways: []store.WayData{
			{Id: 1, NodeIds: []store.NodeId{1, 2, 3}, Bidirectional: true},
			{Id: 2, NodeIds: []store.NodeId{10, 11}, Bidirectional: true},
		},
	}

	filtered := FilterToLargestComponent(data)

	if len(filtered.Nodes) != 3 {
		t.Fatalf("filtered to %d nodes, want 3", len(filtered.Nodes))
	}
	for _, n := range filtered.Nodes {
		if n.Id == 10 || n.Id == 11 {
			t.Errorf("isolated fragment node %d should have been dropped", n.Id)
		}
	}
	if len(filtered.Ways) != 1 {
		t.Fatalf("filtered to %d ways, want 1", len(filtered.Ways))
	}
}

func TestFilterKeepsOneWayConnectivity(t *testing.T) {
	// A one-way street should still count toward connectivity even though it
	// contributes no reverse edge at the store layer.
	data := store.GraphData{
		Nodes: []store.Node{
			{Id: 1, Lat: 1.0, Lon: 103.0},
			{Id: 2, Lat: 1.001, Lon: 103.0},
		},
		Ways: []store.WayData{
			{Id: 1, NodeIds: []store.NodeId{1, 2}, Bidirectional: false},
		},
	}

	members := LargestComponent(data)
	if !members[1] || !members[2] {
		t.Fatal("one-way way should still join its two endpoints into one component")
	}
}
