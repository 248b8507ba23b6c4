// Package main provides the webgraphd CLI entry point: a stateless
// map-reduce worker daemon.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/webgraph-io/webgraph/config"
	"github.com/webgraph-io/webgraph/ingest"
	"github.com/webgraph-io/webgraph/internal/logging"
	"github.com/webgraph-io/webgraph/mapreduce"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "webgraphd",
		Short: "webgraphd runs the stateless map-reduce worker side of bulk ingest",
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("webgraphd v%s (%s)\n", version, commit)
		},
	})

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a map-reduce worker bound to WEBGRAPH_WORKER_LISTEN",
		RunE:  runServe,
	}
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logging.Setup(cfg.LogLevel, os.Stderr)
	log.Infof("starting worker, listen=%s", cfg.WorkerListen)

	worker := mapreduce.NewWorker[[]ingest.EdgeRecord, ingest.PartialGraph](ingest.Mapper{})
	if err := worker.Listen(cfg.WorkerListen); err != nil {
		return fmt.Errorf("binding %s: %w", cfg.WorkerListen, err)
	}
	log.Infof("listening on %s", worker.Addr())

	serveErr := make(chan error, 1)
	go func() { serveErr <- worker.Serve() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-sigCh:
		log.Infof("shutting down")
		if err := worker.Close(); err != nil {
			return fmt.Errorf("closing worker: %w", err)
		}
		<-serveErr
		return nil
	}
}
