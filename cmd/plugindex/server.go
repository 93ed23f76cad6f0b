package plugindex

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/plugindex/plugindex"
	"github.com/plugindex/plugindex/pkg/config"
	"github.com/plugindex/plugindex/pkg/engine"
	"github.com/plugindex/plugindex/pkg/logger"
	"github.com/plugindex/plugindex/pkg/meta"
	"github.com/plugindex/plugindex/pkg/server"
	"github.com/plugindex/plugindex/pkg/types"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the plugindex HTTP server",
	Long: `Start the plugindex HTTP server to provide REST API access to the plugin
catalog.

The server provides endpoints for:
- Searching plugins with filters, sorting and pagination
- Fetching a single plugin by name
- Listing categories, maintainers, labels and required-core versions
- Health checks

Configuration can be provided through config files, environment variables, or
command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
	seedFile   string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "", "Server mode (debug, release, test)")
	serverCmd.Flags().StringVar(&seedFile, "seed", "", "JSON file of plugins to index into an embedded engine at startup")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	if serverMode != "" {
		cfg.Server.Mode = serverMode
	}

	log := logger.New(cfg.Log)

	store, err := meta.Load()
	if err != nil {
		return fmt.Errorf("failed to load facet metadata: %w", err)
	}

	eng, closeEngine, err := newEngine(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer closeEngine()

	if seedFile != "" {
		if err := seedEngine(eng, cfg.Engine.Collection, seedFile); err != nil {
			return fmt.Errorf("failed to seed engine: %w", err)
		}
	}

	catalog := plugindex.New(eng, store,
		plugindex.WithCollection(cfg.Engine.Collection),
		plugindex.WithLogger(log),
	)

	srv := server.New(cfg, catalog, log)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

// seedEngine loads a JSON array of plugins into an embedded engine so a
// catalog can be browsed without a remote engine. Indexing belongs to the
// engine side of the boundary, which is why this lives here and not in the
// catalog service.
func seedEngine(eng engine.Engine, collection, path string) error {
	indexer, ok := eng.(*engine.Badger)
	if !ok {
		return fmt.Errorf("--seed requires the badger engine")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var plugins []types.Plugin
	if err := json.Unmarshal(data, &plugins); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, p := range plugins {
		doc, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if err := indexer.IndexDocument(collection, p.Name, doc); err != nil {
			return err
		}
	}
	return nil
}
