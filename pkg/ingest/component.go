package ingest

import "mrouter/pkg/store"

// unionFind is a map-keyed union-find over store.NodeId, adapted from the
// teacher's index-based UnionFind: ingested node ids are real OSM ids, not a
// dense 0..n range, so parent/rank live in maps instead of slices.
type unionFind struct {
	parent map[store.NodeId]store.NodeId
	rank   map[store.NodeId]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[store.NodeId]store.NodeId),
		rank:   make(map[store.NodeId]int),
	}
}

func (u *unionFind) find(x store.NodeId) store.NodeId {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	// Path halving.
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b store.NodeId) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

// LargestComponent returns the set of node ids belonging to data's largest
// connected component, treating every way's node sequence as undirected
// adjacency — a one-way street still joins its endpoints for the purpose of
// deciding whether the network around them is routable at all.
func LargestComponent(data store.GraphData) map[store.NodeId]bool {
	uf := newUnionFind()

	for _, w := range data.Ways {
		for i := 0; i < len(w.NodeIds)-1; i++ {
			uf.union(w.NodeIds[i], w.NodeIds[i+1])
		}
	}

	sizes := make(map[store.NodeId]int)
	for _, n := range data.Nodes {
		if _, ok := uf.parent[n.Id]; !ok {
			continue // isolated node, never appears in a way
		}
		sizes[uf.find(n.Id)]++
	}

	var largestRoot store.NodeId
	largestSize := 0
	for root, size := range sizes {
		if size > largestSize {
			largestRoot = root
			largestSize = size
		}
	}

	members := make(map[store.NodeId]bool, largestSize)
	for _, n := range data.Nodes {
		if _, ok := uf.parent[n.Id]; !ok {
			continue
		}
		if uf.find(n.Id) == largestRoot {
			members[n.Id] = true
		}
	}
	return members
}

// FilterToLargestComponent drops every node and way edge outside data's
// largest connected component, the ingestion-time cleanup step that keeps a
// stray disconnected footpath fragment from producing unreachable-by-design
// routing failures later.
func FilterToLargestComponent(data store.GraphData) store.GraphData {
	members := LargestComponent(data)

	nodes := make([]store.Node, 0, len(members))
	for _, n := range data.Nodes {
		if members[n.Id] {
			nodes = append(nodes, n)
		}
	}

	ways := make([]store.WayData, 0, len(data.Ways))
	for _, w := range data.Ways {
		kept := w.NodeIds[:0:0]
		for _, id := range w.NodeIds {
			if members[id] {
				kept = append(kept, id)
			}
		}
		if len(kept) < 2 {
			continue
		}
		w.NodeIds = kept
		ways = append(ways, w)
	}

	return store.GraphData{Nodes: nodes, Ways: ways}
}
