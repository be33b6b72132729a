package store

import (
	"mrouter/pkg/geo"
	"mrouter/pkg/labels"
)

// WayData is one way's ingested shape and direction-specific labels — the
// unit pkg/ingest produces and pkg/pgstore persists/reloads.
type WayData struct {
	Id   WayId
	Name string
	// NodeIds is the way's node sequence in its natural (forward) direction.
	NodeIds []NodeId
	Forward labels.WayLabels
	Reverse labels.WayLabels
	// Bidirectional reports whether a reverse-direction edge should be
	// built at all. A strictly one-way way with no bicycle exception has
	// no reverse edges.
	Bidirectional bool
}

// GraphData is the full graph as loaded from persistence (pkg/pgstore) or a
// binary snapshot, ready to be built into a queryable Store.
type GraphData struct {
	Nodes []Node
	Ways  []WayData
}

// Store is the query surface the traversal engine uses. Implementations
// must be safe for concurrent use by many queries: the in-memory
// implementation below builds its adjacency once at load time and never
// mutates it afterward.
type Store interface {
	// SnapToGraph finds the graph node(s) nearest (lat, lon), widening its
	// spatial search progressively. Returns a primary neighbor and,
	// when a second way-aligned candidate exists on the opposite bearing,
	// a secondary one. Returns *SnapFailedError if nothing is found within
	// maxSnapRadius.
	SnapToGraph(lat, lon float64) (primary Neighbor, secondary *Neighbor, err error)

	// ExpandNode returns every directed edge leading out of id. Synthetic
	// nodes (StartNode, EndNode) are wired up by the caller, not stored
	// here.
	ExpandNode(id NodeId) []Edge

	// GetWayLabels returns the labels for a signed way id (negative means
	// the reverse direction), and whether that way is known.
	GetWayLabels(way WayId) (labels.WayLabels, bool)

	// WayNames resolves a batch of way ids (absolute value, sign ignored)
	// to their street names. Ids with no known name are omitted from the
	// result. This is the supplemented fourth primitive: used only by the
	// HTTP boundary when shaping a response, never on the routing hot path.
	WayNames(ids []WayId) map[WayId]string

	// NodeCoords returns the coordinates of a real graph node.
	NodeCoords(id NodeId) (Node, bool)
}

// InMemoryStore is the Store implementation the traversal engine runs
// against. Its adjacency is a plain map rather than a CSR layout: graph
// node ids are the actual OSM ids routing reasons about directly (with -1/-2
// reserved for the synthetic endpoints), so there is no dense-index
// remapping to do, and a map keeps that identity exact.
type InMemoryStore struct {
	nodes     map[NodeId]Node
	adjacency map[NodeId][]Edge
	wayLabels map[WayId]labels.WayLabels // keyed by signed way id
	wayNames  map[WayId]string           // keyed by absolute (positive) way id
	spatial   *spatialIndex
}

// Build constructs an InMemoryStore from loaded graph data. It runs once at
// startup (or on snapshot load); the result is never mutated again, so it
// can be shared across concurrent queries without locking.
func Build(data GraphData) *InMemoryStore {
	s := &InMemoryStore{
		nodes:     make(map[NodeId]Node, len(data.Nodes)),
		adjacency: make(map[NodeId][]Edge, len(data.Nodes)),
		wayLabels: make(map[WayId]labels.WayLabels, len(data.Ways)*2),
		wayNames:  make(map[WayId]string, len(data.Ways)),
	}

	for _, n := range data.Nodes {
		s.nodes[n.Id] = n
	}

	wayItems := make([]spatialItem, 0, len(data.Ways))

	for _, w := range data.Ways {
		s.wayLabels[w.Id] = w.Forward
		s.wayLabels[-w.Id] = w.Reverse
		if w.Name != "" {
			s.wayNames[w.Id] = w.Name
		}

		if len(w.NodeIds) < 2 {
			continue
		}

		minLat, maxLat := s.nodes[w.NodeIds[0]].Lat, s.nodes[w.NodeIds[0]].Lat
		minLon, maxLon := s.nodes[w.NodeIds[0]].Lon, s.nodes[w.NodeIds[0]].Lon

		for i := 0; i < len(w.NodeIds)-1; i++ {
			a, aok := s.nodes[w.NodeIds[i]]
			b, bok := s.nodes[w.NodeIds[i+1]]
			if !aok || !bok {
				continue
			}
			if b.Lat < minLat {
				minLat = b.Lat
			}
			if b.Lat > maxLat {
				maxLat = b.Lat
			}
			if b.Lon < minLon {
				minLon = b.Lon
			}
			if b.Lon > maxLon {
				maxLon = b.Lon
			}

			length := geo.RoundMeters(geo.Haversine(a.Lat, a.Lon, b.Lat, b.Lon))

			s.adjacency[a.Id] = append(s.adjacency[a.Id], Edge{
				To: b.Id, Way: w.Id, Length: length, Labels: w.Forward,
			})
			if w.Bidirectional {
				s.adjacency[b.Id] = append(s.adjacency[b.Id], Edge{
					To: a.Id, Way: -w.Id, Length: length, Labels: w.Reverse,
				})
			}
		}

		wayItems = append(wayItems, spatialItem{
			way:    w.Id,
			minLat: minLat,
			maxLat: maxLat,
			minLon: minLon,
			maxLon: maxLon,
			nodes:  w.NodeIds,
		})
	}

	s.spatial = buildSpatialIndex(wayItems, s.nodes)

	return s
}

func (s *InMemoryStore) ExpandNode(id NodeId) []Edge {
	return s.adjacency[id]
}

func (s *InMemoryStore) GetWayLabels(way WayId) (labels.WayLabels, bool) {
	wl, ok := s.wayLabels[way]
	return wl, ok
}

func (s *InMemoryStore) WayNames(ids []WayId) map[WayId]string {
	out := make(map[WayId]string, len(ids))
	for _, id := range ids {
		if id < 0 {
			id = -id
		}
		if name, ok := s.wayNames[id]; ok {
			out[id] = name
		}
	}
	return out
}

func (s *InMemoryStore) NodeCoords(id NodeId) (Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}
