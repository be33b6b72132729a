package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"mrouter/pkg/cost"
	"mrouter/pkg/routing"
	"mrouter/pkg/store"
)

var (
	exploreSnapshot string
	exploreLat      float64
	exploreLon      float64
	exploreDepth    int
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Run a one-shot depth-bounded traversal from a point and print it as JSON",
	RunE:  runExplore,
}

func init() {
	exploreCmd.Flags().StringVar(&exploreSnapshot, "snapshot", "graph.bin", "path to a binary graph snapshot")
	exploreCmd.Flags().Float64Var(&exploreLat, "lat", 0, "query latitude (required)")
	exploreCmd.Flags().Float64Var(&exploreLon, "lon", 0, "query longitude (required)")
	exploreCmd.Flags().IntVar(&exploreDepth, "depth", 5, "max hops to traverse")
	exploreCmd.MarkFlagRequired("lat")
	exploreCmd.MarkFlagRequired("lon")
}

func runExplore(cmd *cobra.Command, args []string) error {
	data, err := store.LoadSnapshot(exploreSnapshot)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	s := store.Build(data)
	engine := routing.NewEngine(s)

	traversal, meta, err := engine.Explore(cmd.Context(), exploreLat, exploreLon, exploreDepth, cost.DefaultModel())
	if err != nil {
		return fmt.Errorf("explore: %w", err)
	}

	out, err := json.MarshalIndent(struct {
		Segments []routing.TraversalSegment `json:"segments"`
		Metadata routing.Metadata           `json:"metadata"`
	}{traversal.Segments, meta}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
