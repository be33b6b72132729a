// Package store implements the in-memory adjacency index and spatial index
// the traversal engine queries on every route, plus the loader that
// populates them from a persisted graph.
package store

import "mrouter/pkg/labels"

// NodeId identifies a graph node. Real nodes carry their OSM node id
// (always positive in practice); two reserved values stand in for the
// synthetic endpoints a query snaps onto the graph:
type NodeId int64

const (
	// StartNode is the synthetic node id routing.Engine.Route rewires the
	// snapped start neighbors onto.
	StartNode NodeId = -1
	// EndNode is the synthetic node id the snapped end neighbors are wired
	// to; a route is complete when the search pops EndNode off the open set.
	EndNode NodeId = -2
)

// WayId identifies an OSM way. Positive values are the way's forward
// direction; the negation of a way id is its reverse-direction twin, which
// carries its own WayLabels (see Edge).
type WayId int64

// Node is a point in the graph: an OSM node id and its coordinates.
type Node struct {
	Id  NodeId
	Lat float64
	Lon float64
}

// Edge is one directed hop out of a node: the neighbor it leads to, the
// (signed) way it belongs to, its physical length in meters, and the way's
// direction-specific labels.
type Edge struct {
	To     NodeId
	Way    WayId
	Length float64
	Labels labels.WayLabels
}

// Neighbor is a candidate graph node produced by SnapToGraph: the node
// itself, the way it was found on, and its distance from the query point.
type Neighbor struct {
	Node         Node
	Way          WayId
	DistToQuery  float64
	BearingAtWay float64
}
