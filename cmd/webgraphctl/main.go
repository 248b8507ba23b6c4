// Package main provides the webgraphctl CLI entry point: ingest, query, and
// snapshot operations driven from the command line.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/webgraph-io/webgraph/config"
	"github.com/webgraph-io/webgraph/ingest"
	"github.com/webgraph-io/webgraph/internal/logging"
	"github.com/webgraph-io/webgraph/mapreduce"
	"github.com/webgraph-io/webgraph/snapshot"
	"github.com/webgraph-io/webgraph/webgraph"
)

// projectionsOnDisk reports which of graphDir's full/host subdirectories
// already exist, so freeze only snapshots what ingest actually built
// instead of silently creating an empty projection.
func projectionsOnDisk(graphDir string) (hasFull, hasHost bool) {
	if info, err := os.Stat(filepath.Join(graphDir, "full")); err == nil && info.IsDir() {
		hasFull = true
	}
	if info, err := os.Stat(filepath.Join(graphDir, "host")); err == nil && info.IsDir() {
		hasHost = true
	}
	return
}

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "webgraphctl",
		Short: "webgraphctl drives bulk ingest and query operations against a webgraph",
	}

	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newDistancesCmd())
	rootCmd.AddCommand(newCentralityCmd())
	rootCmd.AddCommand(newFreezeCmd())
	rootCmd.AddCommand(newThawCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("webgraphctl v%s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newIngestCmd() *cobra.Command {
	var (
		workers  []string
		graphDir string
		withHost bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <edges-file>",
		Short: "Bulk ingest newline-delimited from/to/label edges via map-reduce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadFromEnv()
			if len(workers) == 0 {
				workers = cfg.Workers
			}
			if len(workers) == 0 {
				return fmt.Errorf("no workers configured: pass --workers or set WEBGRAPH_WORKERS")
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening edges file: %w", err)
			}
			defer f.Close()

			records, err := ingest.ParseEdges(f)
			if err != nil {
				return fmt.Errorf("parsing edges: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("no edges to ingest")
				return nil
			}

			builder := webgraph.NewBuilder(graphDir).WithFullGraph()
			if withHost {
				builder = builder.WithHostGraph()
			}
			dest, err := builder.Open()
			if err != nil {
				return fmt.Errorf("opening destination graph: %w", err)
			}
			defer dest.Close()

			batches := ingest.Batch(records, len(workers))
			reducer := &ingest.Reducer{
				Dest: dest,
				Log:  logging.Setup(cfg.LogLevel, os.Stderr),
			}

			manager := &mapreduce.Manager[[]ingest.EdgeRecord, ingest.PartialGraph, *webgraph.Webgraph]{
				Workers:     workers,
				Reducer:     reducer,
				Seed:        reducer.Seed,
				DialTimeout: cfg.DialTimeout,
				IOTimeout:   cfg.IOTimeout,
			}

			if _, err := manager.Run(batches); err != nil {
				return fmt.Errorf("running ingest: %w", err)
			}
			if err := reducer.Err(); err != nil {
				return fmt.Errorf("reducing into graph: %w", err)
			}

			if err := dest.Flush(); err != nil {
				return fmt.Errorf("flushing graph: %w", err)
			}

			fmt.Printf("ingested %d edges across %d workers into %s\n", len(records), len(workers), graphDir)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&workers, "workers", nil, "comma-separated host:port worker roster (defaults to WEBGRAPH_WORKERS)")
	cmd.Flags().StringVar(&graphDir, "graph-dir", "./data/webgraph", "destination graph directory")
	cmd.Flags().BoolVar(&withHost, "host", false, "also build the host-level projection")
	return cmd
}

func newDistancesCmd() *cobra.Command {
	var (
		reversed bool
		host     bool
	)

	cmd := &cobra.Command{
		Use:   "distances <graph-dir> <source-node>",
		Short: "Print single-source shortest path distances from source-node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			graphDir, sourceName := args[0], args[1]

			builder := webgraph.NewBuilder(graphDir).ReadOnly(true)
			if host {
				builder = builder.WithHostGraph()
			} else {
				builder = builder.WithFullGraph()
			}
			w, err := builder.Open()
			if err != nil {
				return fmt.Errorf("opening graph: %w", err)
			}
			defer w.Close()

			source := webgraph.Node{Name: sourceName}
			var dists map[webgraph.Node]int
			switch {
			case host && reversed:
				dists, err = w.HostReversedDistances(source)
			case host:
				dists, err = w.HostDistances(source)
			case reversed:
				dists, err = w.ReversedDistances(source)
			default:
				dists, err = w.Distances(source)
			}
			if err != nil {
				return fmt.Errorf("computing distances: %w", err)
			}

			printNodeIntMap(dists)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reversed, "reversed", false, "traverse edges backwards")
	cmd.Flags().BoolVar(&host, "host", false, "query the host projection instead of the full graph")
	return cmd
}

func newCentralityCmd() *cobra.Command {
	var host bool

	cmd := &cobra.Command{
		Use:   "centrality <graph-dir>",
		Short: "Print harmonic centrality for every node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graphDir := args[0]

			builder := webgraph.NewBuilder(graphDir).ReadOnly(true)
			if host {
				builder = builder.WithHostGraph()
			} else {
				builder = builder.WithFullGraph()
			}
			w, err := builder.Open()
			if err != nil {
				return fmt.Errorf("opening graph: %w", err)
			}
			defer w.Close()

			var scores map[webgraph.Node]float64
			if host {
				scores, err = w.HostHarmonicCentrality()
			} else {
				scores, err = w.HarmonicCentrality()
			}
			if err != nil {
				return fmt.Errorf("computing centrality: %w", err)
			}

			names := make([]string, 0, len(scores))
			for n := range scores {
				names = append(names, n.Name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s\t%f\n", name, scores[webgraph.Node{Name: name}])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&host, "host", false, "query the host projection instead of the full graph")
	return cmd
}

func newFreezeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "freeze <graph-dir> <out-file>",
		Short: "Snapshot a graph directory into a single file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			graphDir, outFile := args[0], args[1]

			builder := webgraph.NewBuilder(graphDir)
			hasFull, hasHost := projectionsOnDisk(graphDir)
			if hasFull {
				builder = builder.WithFullGraph()
			}
			if hasHost {
				builder = builder.WithHostGraph()
			}
			w, err := builder.Open()
			if err != nil {
				return fmt.Errorf("opening graph: %w", err)
			}
			defer w.Close()

			frozen, err := snapshot.Freeze(w)
			if err != nil {
				return fmt.Errorf("freezing graph: %w", err)
			}

			raw, err := frozen.Encode()
			if err != nil {
				return fmt.Errorf("encoding snapshot: %w", err)
			}

			if err := os.WriteFile(outFile, raw, 0o644); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}

			fmt.Printf("froze %s into %s (%d bytes)\n", graphDir, outFile, len(raw))
			return nil
		},
	}
}

func newThawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "thaw <in-file> <graph-dir>",
		Short: "Restore a graph directory from a snapshot file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inFile, graphDir := args[0], args[1]

			raw, err := os.ReadFile(inFile)
			if err != nil {
				return fmt.Errorf("reading snapshot: %w", err)
			}

			frozen, err := snapshot.DecodeFrozen(raw)
			if err != nil {
				return fmt.Errorf("decoding snapshot: %w", err)
			}

			w, err := snapshot.Thaw(frozen, graphDir)
			if err != nil {
				return fmt.Errorf("thawing snapshot: %w", err)
			}
			defer w.Close()

			fmt.Printf("thawed %s into %s\n", inFile, graphDir)
			return nil
		},
	}
}

func printNodeIntMap(m map[webgraph.Node]int) {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s\t%d\n", name, m[webgraph.Node{Name: name}])
	}
}
