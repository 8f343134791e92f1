// Package cli provides the command-line interface for geofile.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zhiwei-liang/geofile-go/internal/config"
	"github.com/zhiwei-liang/geofile-go/internal/embedding"
	"github.com/zhiwei-liang/geofile-go/internal/memory"
	"github.com/zhiwei-liang/geofile-go/internal/metrics"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	collector  *metrics.Collector
)

var rootCmd = &cobra.Command{
	Use:   "geofile",
	Short: "Geodata ingestion and diagnostics",
	Long: `Geofile ingests tabular (.csv/.txt/.xlsx/.xls) and shapefile (.shp)
geodata, infers coordinate columns, classifies attribute fields, and renders
an analysis report. Failures come back as structured diagnostics with
remediation suggestions; broken coordinate system sidecars are repaired
automatically.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		collector = metrics.NewCollector()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rememberCmd)
	rootCmd.AddCommand(recallCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// writerNotifier prints pipeline notifications straight to the terminal.
type writerNotifier struct {
	out io.Writer
}

func (n writerNotifier) Send(_ context.Context, text string) {
	fmt.Fprintln(n.out, text)
}

// openStore connects to SurrealDB and the embedder for commands that need
// the memory layer.
func openStore(ctx context.Context) (*memory.Store, *memory.Client, error) {
	client, err := memory.NewClient(ctx, memory.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to memory store: %w", err)
	}
	if err := client.InitSchema(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, nil, fmt.Errorf("initialize memory schema: %w", err)
	}

	embedder, err := embedding.NewOllamaClient(cfg.EmbeddingModel, 0)
	if err != nil {
		_ = client.Close(ctx)
		return nil, nil, fmt.Errorf("create embedder: %w", err)
	}

	return memory.NewStore(client, embedder, collector, logger), client, nil
}
