package store

import (
	"sort"

	"github.com/tidwall/rtree"

	"mrouter/pkg/geo"
)

const (
	// snapIncrement is how much the search box grows, in degrees, each time
	// a radius finds nothing.
	snapIncrement = 0.0002
	// maxSnapRadius is the widest box SnapToGraph will try before giving up
	// with a SnapFailedError.
	maxSnapRadius = 0.001
	// secondaryBearingThreshold is the minimum difference, in degrees,
	// between the bearings from the query point to the primary snap and to a
	// second candidate on the same way for that candidate to be offered as
	// the secondary neighbor — i.e. the two nodes lie on opposite sides of
	// the query point along that way.
	secondaryBearingThreshold = 90.0
)

type spatialItem struct {
	way                            WayId
	minLat, maxLat, minLon, maxLon float64
	nodes                          []NodeId
}

type spatialIndex struct {
	tree  rtree.RTreeG[WayId]
	ways  map[WayId]spatialItem
	nodes map[NodeId]Node
}

func buildSpatialIndex(items []spatialItem, nodes map[NodeId]Node) *spatialIndex {
	idx := &spatialIndex{
		ways:  make(map[WayId]spatialItem, len(items)),
		nodes: nodes,
	}
	for _, it := range items {
		idx.ways[it.way] = it
		idx.tree.Insert(
			[2]float64{it.minLon, it.minLat},
			[2]float64{it.maxLon, it.maxLat},
			it.way,
		)
	}
	return idx
}

type candidate struct {
	node    Node
	way     WayId
	dist    float64
	bearing float64
}

// snap finds every way-node candidate within a box of half-width radius
// (in degrees) around (lat, lon), returning them sorted by distance.
func (idx *spatialIndex) snap(lat, lon, radius float64) []candidate {
	var candidates []candidate

	min := [2]float64{lon - radius, lat - radius}
	max := [2]float64{lon + radius, lat + radius}

	idx.tree.Search(min, max, func(_, _ [2]float64, way WayId) bool {
		item := idx.ways[way]
		for _, nid := range item.nodes {
			n, ok := idx.nodes[nid]
			if !ok {
				continue
			}
			bearing := geo.Bearing(lat, lon, n.Lat, n.Lon)
			candidates = append(candidates, candidate{
				node:    n,
				way:     way,
				dist:    geo.Haversine(lat, lon, n.Lat, n.Lon),
				bearing: bearing,
			})
		}
		return true
	})

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	return candidates
}

// wayBearingAt returns the bearing of the way's path at node index i, using
// the segment to the next node (or from the previous node, at the way's
// last point).
func wayBearingAt(nodeIds []NodeId, nodes map[NodeId]Node, i int) float64 {
	a := nodes[nodeIds[i]]
	if i+1 < len(nodeIds) {
		b := nodes[nodeIds[i+1]]
		return geo.Bearing(a.Lat, a.Lon, b.Lat, b.Lon)
	}
	if i > 0 {
		prev := nodes[nodeIds[i-1]]
		return geo.Bearing(prev.Lat, prev.Lon, a.Lat, a.Lon)
	}
	return 0
}

// SnapToGraph implements Store.SnapToGraph: widen the search box until a
// candidate is found or maxSnapRadius is exceeded, then look for a second,
// bearing-distinct candidate to offer alongside the closest one.
func (s *InMemoryStore) SnapToGraph(lat, lon float64) (Neighbor, *Neighbor, error) {
	var candidates []candidate
	for radius := snapIncrement; radius <= maxSnapRadius; radius += snapIncrement {
		candidates = s.spatial.snap(lat, lon, radius)
		if len(candidates) > 0 {
			break
		}
	}
	if len(candidates) == 0 {
		return Neighbor{}, nil, &SnapFailedError{Lat: lat, Lon: lon}
	}

	primary := candidates[0]
	result := Neighbor{
		Node:         primary.node,
		Way:          primary.way,
		DistToQuery:  primary.dist,
		BearingAtWay: primary.bearing,
	}

	for _, c := range candidates[1:] {
		if c.node.Id == primary.node.Id {
			continue
		}
		if c.way != primary.way {
			continue
		}
		if geo.BearingDiff(primary.bearing, c.bearing) >= secondaryBearingThreshold {
			secondary := Neighbor{
				Node:         c.node,
				Way:          c.way,
				DistToQuery:  c.dist,
				BearingAtWay: c.bearing,
			}
			return result, &secondary, nil
		}
	}

	return result, nil, nil
}
