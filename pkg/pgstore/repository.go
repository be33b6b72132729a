package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mrouter/pkg/geo"
	"mrouter/pkg/labels"
	"mrouter/pkg/store"
)

// Querier is the subset of pgxpool.Pool (also satisfied by pgx.Conn/pgx.Tx)
// this package needs — narrow enough that tests can swap in a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Save writes a full GraphData snapshot to the schema, replacing any prior
// contents. Intended for cmd/mrouter ingest, run once per OSM extract.
func Save(ctx context.Context, db Querier, data store.GraphData) error {
	if _, err := db.Exec(ctx, "TRUNCATE Segments, WayNodes, WayLabels, Ways, Nodes"); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	nodeRows := make([][]any, len(data.Nodes))
	for i, n := range data.Nodes {
		nodeRows[i] = []any{int64(n.Id), n.Lon, n.Lat}
	}
	if _, err := db.CopyFrom(ctx, pgx.Identifier{"nodes"}, []string{"id", "lon", "lat"}, pgx.CopyFromRows(nodeRows)); err != nil {
		return fmt.Errorf("copy nodes: %w", err)
	}

	nodeById := make(map[store.NodeId]store.Node, len(data.Nodes))
	for _, n := range data.Nodes {
		nodeById[n.Id] = n
	}

	var wayRows, wayNodeRows, labelRows, segmentRows [][]any
	for _, w := range data.Ways {
		if len(w.NodeIds) < 2 {
			continue
		}
		minLat, maxLat := nodeById[w.NodeIds[0]].Lat, nodeById[w.NodeIds[0]].Lat
		minLon, maxLon := nodeById[w.NodeIds[0]].Lon, nodeById[w.NodeIds[0]].Lon
		for _, id := range w.NodeIds[1:] {
			n := nodeById[id]
			minLat, maxLat = minFloat(minLat, n.Lat), maxFloat(maxLat, n.Lat)
			minLon, maxLon = minFloat(minLon, n.Lon), maxFloat(maxLon, n.Lon)
		}
		wayRows = append(wayRows, []any{int64(w.Id), minLat, maxLat, minLon, maxLon})

		var name any
		if w.Name != "" {
			name = w.Name
		}
		labelRows = append(labelRows, []any{int64(w.Id), int16(w.Forward.Cycleway), int16(w.Forward.Road), w.Forward.Salmon, name})
		if w.Bidirectional {
			labelRows = append(labelRows, []any{-int64(w.Id), int16(w.Reverse.Cycleway), int16(w.Reverse.Road), w.Reverse.Salmon, nil})
		}

		for pos, id := range w.NodeIds {
			wayNodeRows = append(wayNodeRows, []any{int64(w.Id), int64(id), int32(pos)})
		}

		for i := 0; i < len(w.NodeIds)-1; i++ {
			a, b := nodeById[w.NodeIds[i]], nodeById[w.NodeIds[i+1]]
			dist := segmentDistance(a, b)
			segmentRows = append(segmentRows, []any{int64(a.Id), int64(b.Id), int64(w.Id), dist})
			if w.Bidirectional {
				segmentRows = append(segmentRows, []any{int64(b.Id), int64(a.Id), -int64(w.Id), dist})
			}
		}
	}

	if _, err := db.CopyFrom(ctx, pgx.Identifier{"ways"}, []string{"id", "minlat", "maxlat", "minlon", "maxlon"}, pgx.CopyFromRows(wayRows)); err != nil {
		return fmt.Errorf("copy ways: %w", err)
	}
	if _, err := db.CopyFrom(ctx, pgx.Identifier{"waynodes"}, []string{"way", "node", "pos"}, pgx.CopyFromRows(wayNodeRows)); err != nil {
		return fmt.Errorf("copy waynodes: %w", err)
	}
	if _, err := db.CopyFrom(ctx, pgx.Identifier{"waylabels"}, []string{"id", "cycleway", "road", "salmon", "name"}, pgx.CopyFromRows(labelRows)); err != nil {
		return fmt.Errorf("copy waylabels: %w", err)
	}
	if _, err := db.CopyFrom(ctx, pgx.Identifier{"segments"}, []string{"n1", "n2", "way", "distance"}, pgx.CopyFromRows(segmentRows)); err != nil {
		return fmt.Errorf("copy segments: %w", err)
	}

	return nil
}

// Load reads the full schema back into a GraphData, ready for store.Build.
// Used by cmd/mrouter serve at startup to populate the in-memory store.
func Load(ctx context.Context, db Querier) (store.GraphData, error) {
	nodes, err := loadNodes(ctx, db)
	if err != nil {
		return store.GraphData{}, fmt.Errorf("load nodes: %w", err)
	}

	wayNodeIds, err := loadWayNodes(ctx, db)
	if err != nil {
		return store.GraphData{}, fmt.Errorf("load waynodes: %w", err)
	}

	forward, reverse, names, bidir, err := loadLabels(ctx, db)
	if err != nil {
		return store.GraphData{}, fmt.Errorf("load waylabels: %w", err)
	}

	ways := make([]store.WayData, 0, len(wayNodeIds))
	for id, nodeIds := range wayNodeIds {
		ways = append(ways, store.WayData{
			Id:            id,
			Name:          names[id],
			NodeIds:       nodeIds,
			Forward:       forward[id],
			Reverse:       reverse[id],
			Bidirectional: bidir[id],
		})
	}

	return store.GraphData{Nodes: nodes, Ways: ways}, nil
}

func loadNodes(ctx context.Context, db Querier) ([]store.Node, error) {
	rows, err := db.Query(ctx, "SELECT id, lon, lat FROM Nodes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []store.Node
	for rows.Next() {
		var id int64
		var lon, lat float64
		if err := rows.Scan(&id, &lon, &lat); err != nil {
			return nil, err
		}
		nodes = append(nodes, store.Node{Id: store.NodeId(id), Lon: lon, Lat: lat})
	}
	return nodes, rows.Err()
}

func loadWayNodes(ctx context.Context, db Querier) (map[store.WayId][]store.NodeId, error) {
	rows, err := db.Query(ctx, "SELECT way, node FROM WayNodes ORDER BY way, pos")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[store.WayId][]store.NodeId)
	for rows.Next() {
		var way, node int64
		if err := rows.Scan(&way, &node); err != nil {
			return nil, err
		}
		id := store.WayId(way)
		result[id] = append(result[id], store.NodeId(node))
	}
	return result, rows.Err()
}

func loadLabels(ctx context.Context, db Querier) (
	forward, reverse map[store.WayId]labels.WayLabels,
	names map[store.WayId]string,
	bidir map[store.WayId]bool,
	err error,
) {
	rows, err := db.Query(ctx, "SELECT id, cycleway, road, salmon, name FROM WayLabels")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	defer rows.Close()

	forward = make(map[store.WayId]labels.WayLabels)
	reverse = make(map[store.WayId]labels.WayLabels)
	names = make(map[store.WayId]string)
	bidir = make(map[store.WayId]bool)

	for rows.Next() {
		var id int64
		var cycleway, road int16
		var salmon bool
		var name *string
		if err := rows.Scan(&id, &cycleway, &road, &salmon, &name); err != nil {
			return nil, nil, nil, nil, err
		}
		wl := labels.WayLabels{Cycleway: labels.Cycleway(cycleway), Road: labels.Road(road), Salmon: salmon}
		if id >= 0 {
			forward[store.WayId(id)] = wl
			if name != nil {
				names[store.WayId(id)] = *name
			}
		} else {
			posId := store.WayId(-id)
			reverse[posId] = wl
			bidir[posId] = true
		}
	}
	return forward, reverse, names, bidir, rows.Err()
}

func segmentDistance(a, b store.Node) int64 {
	return int64(geo.RoundMeters(geo.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)))
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
