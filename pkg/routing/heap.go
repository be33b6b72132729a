package routing

// openSet is a concrete-typed binary min-heap of search frontier entries.
// Avoids the interface-boxing overhead of container/heap — the traversal
// engine pushes into and pops out of this on every expanded edge.
type openSet struct {
	items []openEntry
}

// openEntry is one open-set entry: the f-score used to order the heap
// (priority = gAtNode + heuristic), the node it leads to, and the g-score it
// was pushed with. A popped entry is stale — and discarded — if gAtNode is
// worse than the best g recorded for toNode since the entry was pushed.
type openEntry struct {
	priority float32
	toNode   NodeId
	gAtNode  float32
}

func (h *openSet) Len() int { return len(h.items) }

func (h *openSet) Push(e openEntry) {
	h.items = append(h.items, e)
	h.siftUp(len(h.items) - 1)
}

func (h *openSet) Pop() openEntry {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *openSet) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].priority >= h.items[parent].priority {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *openSet) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].priority < h.items[smallest].priority {
			smallest = left
		}
		if right < n && h.items[right].priority < h.items[smallest].priority {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
