package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mrouter/pkg/ingest"
	"mrouter/pkg/pgstore"
	"mrouter/pkg/store"
)

var (
	ingestInput     string
	ingestSnapshot  string
	ingestToDB      bool
	ingestBBox      string
	ingestSingapore bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse an OSM PBF extract into a routable graph",
	Long: "ingest reads an .osm.pbf extract, keeps only bicycle-accessible " +
		"ways, drops every component but the largest, and writes the result " +
		"either to a binary snapshot file or to Postgres.",
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestInput, "input", "", "path to .osm.pbf file (required)")
	ingestCmd.Flags().StringVar(&ingestSnapshot, "output", "graph.bin", "output snapshot path (ignored with --db)")
	ingestCmd.Flags().BoolVar(&ingestToDB, "db", false, "write to Postgres (connection via MROUTER_DB_* env vars) instead of a snapshot file")
	ingestCmd.Flags().StringVar(&ingestBBox, "bbox", "", "bounding box filter: minLat,minLon,maxLat,maxLon")
	ingestCmd.Flags().BoolVar(&ingestSingapore, "singapore", false, "shortcut for --bbox 1.15,103.6,1.48,104.1")
	ingestCmd.MarkFlagRequired("input")
}

func runIngest(cmd *cobra.Command, args []string) error {
	var bbox ingest.BBox
	switch {
	case ingestSingapore:
		bbox = ingest.BBox{MinLat: 1.15, MaxLat: 1.48, MinLon: 103.6, MaxLon: 104.1}
		log.Println("using Singapore bounding box filter")
	case ingestBBox != "":
		var minLat, minLon, maxLat, maxLon float64
		if _, err := fmt.Sscanf(ingestBBox, "%f,%f,%f,%f", &minLat, &minLon, &maxLat, &maxLon); err != nil {
			return fmt.Errorf("invalid --bbox (expected minLat,minLon,maxLat,maxLon): %w", err)
		}
		bbox = ingest.BBox{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}
	}

	start := time.Now()

	f, err := os.Open(ingestInput)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	log.Println("parsing OSM data...")
	data, err := ingest.Parse(cmd.Context(), f, ingest.Options{BBox: bbox})
	if err != nil {
		return fmt.Errorf("parse pbf: %w", err)
	}
	log.Printf("parsed %d nodes, %d ways", len(data.Nodes), len(data.Ways))

	log.Println("extracting largest connected component...")
	data = ingest.FilterToLargestComponent(data)
	log.Printf("filtered: %d nodes, %d ways", len(data.Nodes), len(data.Ways))

	if ingestToDB {
		if err := saveToDB(cmd.Context(), data); err != nil {
			return err
		}
	} else {
		if err := store.WriteSnapshot(ingestSnapshot, data); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		log.Printf("wrote snapshot to %s", ingestSnapshot)
	}

	log.Printf("done in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func saveToDB(ctx context.Context, data store.GraphData) error {
	db, err := pgstore.GetPool()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pgstore.Close()

	log.Println("applying schema migrations...")
	if err := pgstore.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	log.Println("writing graph to database...")
	if err := pgstore.Save(ctx, db, data); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	return nil
}
