package main

import (
	"fmt"
	"log"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"mrouter/pkg/api"
	"mrouter/pkg/cache"
	"mrouter/pkg/pgstore"
	"mrouter/pkg/routing"
	"mrouter/pkg/store"
)

var (
	serveSnapshot string
	serveFromDB   bool
	servePort     int
	serveRedis    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load a graph and serve routing queries over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveSnapshot, "snapshot", "graph.bin", "path to a binary graph snapshot (ignored with --db)")
	serveCmd.Flags().BoolVar(&serveFromDB, "db", false, "load from Postgres (connection via MROUTER_DB_* env vars) instead of a snapshot file")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port")
	serveCmd.Flags().BoolVar(&serveRedis, "redis", false, "cache validated cost model configs in Redis (connection via MROUTER_REDIS_* env vars); route results are not cached")
}

func runServe(cmd *cobra.Command, args []string) error {
	start := time.Now()

	data, err := loadGraph(cmd)
	if err != nil {
		return err
	}
	log.Printf("loaded %d nodes, %d ways", len(data.Nodes), len(data.Ways))

	log.Println("building spatial index...")
	s := store.Build(data)
	engine := routing.NewEngine(s)

	// Graph construction leaves behind a lot of init-time garbage; return it
	// to the OS now rather than let the live heap carry it through steady
	// state traffic.
	runtime.GC()
	debug.FreeOSMemory()

	var cacheCfg *cache.Config
	if serveRedis {
		cacheCfg = cache.LoadConfigFromEnv()
		if _, err := cache.GetClient(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer cache.Close()
	}

	handlers := &api.Handlers{Engine: engine, Store: s, Cache: api.NewCacheConfig(cacheCfg)}
	cfg := api.DefaultConfig()
	cfg.Addr = fmt.Sprintf(":%d", servePort)
	srv := api.NewServer(cfg, handlers)

	log.Printf("ready in %s", time.Since(start).Round(time.Millisecond))
	return api.ListenAndServe(srv, cfg.Addr)
}

func loadGraph(cmd *cobra.Command) (store.GraphData, error) {
	if serveFromDB {
		db, err := pgstore.GetPool()
		if err != nil {
			return store.GraphData{}, fmt.Errorf("connect to database: %w", err)
		}
		defer pgstore.Close()
		log.Println("loading graph from database...")
		return pgstore.Load(cmd.Context(), db)
	}
	log.Printf("loading graph from %s...", serveSnapshot)
	return store.LoadSnapshot(serveSnapshot)
}
