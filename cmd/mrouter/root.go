package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mrouter",
	Short: "Bicycle routing engine over OpenStreetMap street data",
	Long: "mrouter ingests OSM PBF extracts into a routable street graph, " +
		"serves shortest-cost bicycle routes over HTTP, and can run one-shot " +
		"exploration queries against a built graph from the command line.",
}

func main() {
	rootCmd.AddCommand(ingestCmd, serveCmd, exploreCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
