package ingest

import (
	"testing"

	"github.com/paulmach/osm"

	"mrouter/pkg/labels"
)

func wayWithTags(id osm.WayID, highway string, tags osm.Tags, nodeIDs ...osm.NodeID) *osm.Way {
	allTags := append(osm.Tags{{Key: "highway", Value: highway}}, tags...)
	nodes := make(osm.WayNodes, len(nodeIDs))
	for i, id := range nodeIDs {
		nodes[i] = osm.WayNode{ID: id}
	}
	return &osm.Way{ID: id, Tags: allTags, Nodes: nodes}
}

func TestConvertWayRejectsMotorway(t *testing.T) {
	w := wayWithTags(1, "motorway", nil, 1, 2)
	if _, ok := convertWay(w); ok {
		t.Fatal("motorway should not be bicycle-accessible")
	}
}

func TestConvertWayAcceptsResidential(t *testing.T) {
	w := wayWithTags(1, "residential", nil, 1, 2, 3)
	wd, ok := convertWay(w)
	if !ok {
		t.Fatal("residential way should be accepted")
	}
	if wd.Forward.Road != labels.RoadLocal {
		t.Errorf("Forward.Road = %v, want RoadLocal", wd.Forward.Road)
	}
	if len(wd.NodeIds) != 3 {
		t.Errorf("NodeIds len = %d, want 3", len(wd.NodeIds))
	}
	if !wd.Bidirectional {
		t.Error("a two-way residential street should be bidirectional")
	}
}

func TestConvertWayRejectsBicycleNo(t *testing.T) {
	w := wayWithTags(1, "residential", osm.Tags{{Key: "bicycle", Value: "no"}}, 1, 2)
	if _, ok := convertWay(w); ok {
		t.Fatal("bicycle=no should reject the way outright")
	}
}

func TestConvertWayOneWayWithoutExceptionIsNotBidirectional(t *testing.T) {
	w := wayWithTags(1, "primary", osm.Tags{{Key: "oneway", Value: "yes"}}, 1, 2)
	wd, ok := convertWay(w)
	if !ok {
		t.Fatal("expected the way to be accepted")
	}
	if wd.Bidirectional {
		t.Error("a plain one-way street has no bicycle exception and should not be bidirectional")
	}
}

func TestConvertWayOneWayWithContraflowIsBidirectional(t *testing.T) {
	w := wayWithTags(1, "primary", osm.Tags{
		{Key: "oneway", Value: "yes"},
		{Key: "oneway:bicycle", Value: "no"},
	}, 1, 2)
	wd, ok := convertWay(w)
	if !ok {
		t.Fatal("expected the way to be accepted")
	}
	if !wd.Bidirectional {
		t.Error("oneway:bicycle=no should permit contraflow, making the way bidirectional")
	}
	if !wd.Reverse.Salmon {
		t.Error("the reverse direction of a contraflow-permitted one-way should be marked salmon")
	}
}
