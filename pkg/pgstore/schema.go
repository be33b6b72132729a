package pgstore

import "context"

// schemaSQL creates the persistent edge schema pinned by spec.md §6, plus
// the additive `name` column WayLabels carries for the supplemented
// WayNames lookup (see pkg/store.Store.WayNames) — extra column, same
// pinned table/column set otherwise.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS Nodes (
	id  BIGINT PRIMARY KEY,
	lon DOUBLE PRECISION NOT NULL,
	lat DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS Ways (
	id     BIGINT PRIMARY KEY,
	minLat DOUBLE PRECISION NOT NULL,
	maxLat DOUBLE PRECISION NOT NULL,
	minLon DOUBLE PRECISION NOT NULL,
	maxLon DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS WayNodes (
	way  BIGINT NOT NULL REFERENCES Ways(id),
	node BIGINT NOT NULL REFERENCES Nodes(id),
	pos  INTEGER NOT NULL,
	PRIMARY KEY (way, pos)
);

CREATE TABLE IF NOT EXISTS Segments (
	n1       BIGINT NOT NULL REFERENCES Nodes(id),
	n2       BIGINT NOT NULL REFERENCES Nodes(id),
	way      BIGINT NOT NULL REFERENCES Ways(id),
	distance INTEGER NOT NULL,
	PRIMARY KEY (n1, n2, way)
);

CREATE TABLE IF NOT EXISTS WayLabels (
	id       BIGINT PRIMARY KEY,
	cycleway SMALLINT NOT NULL,
	road     SMALLINT NOT NULL,
	salmon   BOOLEAN NOT NULL,
	name     TEXT
);

CREATE INDEX IF NOT EXISTS idx_waynodes_node ON WayNodes(node);
CREATE INDEX IF NOT EXISTS idx_segments_n1 ON Segments(n1);
CREATE INDEX IF NOT EXISTS idx_ways_bbox ON Ways(minLat, maxLat, minLon, maxLon);
`

// Migrate creates the schema if it does not already exist. Idempotent —
// safe to call on every cmd/mrouter ingest run.
func Migrate(ctx context.Context, db Querier) error {
	_, err := db.Exec(ctx, schemaSQL)
	return err
}
