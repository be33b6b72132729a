// Package ingest parses an OSM PBF extract into the signed-way-id,
// labeled-edge shape pkg/store and pkg/pgstore expect.
package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"mrouter/pkg/labels"
	"mrouter/pkg/store"
)

// bikeHighways is the set of highway= values considered bicycle-accessible.
// Motorways and their links are excluded outright; everything else that
// carries a sidewalk/path/residential character is admitted, same spirit as
// the teacher's carHighways allowlist but for the opposite travel mode.
var bikeHighways = map[string]bool{
	"residential":    true,
	"living_street":  true,
	"unclassified":   true,
	"service":        true,
	"tertiary":       true,
	"tertiary_link":  true,
	"secondary":      true,
	"secondary_link": true,
	"primary":        true,
	"primary_link":   true,
	"cycleway":       true,
	"path":           true,
	"track":          true,
	"footway":        true,
	"pedestrian":     true,
	"steps":          false, // present in the map for documentation; never admitted
}

// BBox restricts ingestion to ways/nodes within a bounding box. A zero-value
// BBox (IsZero() true) admits everything.
type BBox struct {
	MinLat, MaxLat, MinLon, MaxLon float64
}

func (b BBox) IsZero() bool {
	return b == BBox{}
}

func (b BBox) Contains(lat, lon float64) bool {
	if b.IsZero() {
		return true
	}
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Options configures Parse.
type Options struct {
	BBox BBox
}

type tagsView struct{ osm.Tags }

func (t tagsView) Find(key string) string { return t.Tags.Find(key) }

// Parse reads an OSM PBF extract and returns the graph data ready for
// store.Build or pgstore persistence. It makes a single forward pass over the
// file, collecting node coordinates and bicycle-accessible ways (each with
// its full node id list); once the scan ends, each way's node ids are checked
// against the coordinates kept in memory.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...Options) (store.GraphData, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	scanner := osmpbf.New(ctx, rs, 4)
	defer scanner.Close()

	nodeLat := make(map[osm.NodeID]float64)
	nodeLon := make(map[osm.NodeID]float64)
	var ways []store.WayData

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if !opt.BBox.IsZero() && !opt.BBox.Contains(o.Lat, o.Lon) {
				continue
			}
			nodeLat[o.ID] = o.Lat
			nodeLon[o.ID] = o.Lon
		case *osm.Way:
			wd, ok := convertWay(o)
			if !ok {
				continue
			}
			ways = append(ways, wd)
		}
	}
	if err := scanner.Err(); err != nil {
		return store.GraphData{}, fmt.Errorf("scan pbf: %w", err)
	}

	// Drop node ids never seen (outside the bbox, or absent from the
	// extract) from each way's sequence rather than the whole way, matching
	// an extract's usual edge fringe; a way is dropped only when fewer than
	// two of its nodes remain.
	filtered := ways[:0]
	for _, w := range ways {
		kept := w.NodeIds[:0]
		for _, id := range w.NodeIds {
			if _, ok := nodeLat[osm.NodeID(id)]; ok {
				kept = append(kept, id)
			}
		}
		if len(kept) < 2 {
			continue
		}
		w.NodeIds = kept
		filtered = append(filtered, w)
	}

	nodes := make([]store.Node, 0, len(nodeLat))
	for id, lat := range nodeLat {
		nodes = append(nodes, store.Node{Id: store.NodeId(id), Lat: lat, Lon: nodeLon[id]})
	}

	return store.GraphData{Nodes: nodes, Ways: filtered}, nil
}

// convertWay derives a store.WayData from a raw OSM way, or reports ok=false
// if the way is not bicycle-accessible at all.
func convertWay(w *osm.Way) (store.WayData, bool) {
	if !bikeHighways[w.Tags.Find("highway")] {
		return store.WayData{}, false
	}
	if w.Tags.Find("bicycle") == "no" || w.Tags.Find("access") == "private" {
		return store.WayData{}, false
	}

	tags := tagsView{w.Tags}

	nodeIds := make([]store.NodeId, len(w.Nodes))
	for i, wn := range w.Nodes {
		nodeIds[i] = store.NodeId(wn.ID)
	}

	oneWay := labels.IsOneWay(tags)
	bidirectional := !oneWay || labels.AllowsBicycleContraflow(tags)

	name := w.Tags.Find("name")

	return store.WayData{
		Id:            store.WayId(w.ID),
		Name:          name,
		NodeIds:       nodeIds,
		Forward:       labels.DeriveForward(tags),
		Reverse:       labels.DeriveReverse(tags),
		Bidirectional: bidirectional,
	}, true
}
