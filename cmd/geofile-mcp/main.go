// Package main provides the entry point for the geofile MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhiwei-liang/geofile-go/internal/agent"
	"github.com/zhiwei-liang/geofile-go/internal/config"
	"github.com/zhiwei-liang/geofile-go/internal/embedding"
	"github.com/zhiwei-liang/geofile-go/internal/geodata"
	"github.com/zhiwei-liang/geofile-go/internal/llm"
	"github.com/zhiwei-liang/geofile-go/internal/mcpserver"
	"github.com/zhiwei-liang/geofile-go/internal/memory"
	"github.com/zhiwei-liang/geofile-go/internal/metrics"
	"github.com/zhiwei-liang/geofile-go/internal/notify"
	"github.com/zhiwei-liang/geofile-go/internal/tools"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// stdout belongs to the MCP transport; the logger writes to stderr and
	// the log file only.
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("geofile-mcp starting",
		"version", version,
		"surrealdb_url", cfg.SurrealDBURL,
		"embedding_model", cfg.EmbeddingModel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	collector := metrics.NewCollector()
	notifier := notify.Logger{Log: logger}
	dispatcher := geodata.NewDispatcher(notifier, logger, collector)

	var store *memory.Store
	client, err := memory.NewClient(ctx, memory.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		logger.Warn("memory store unavailable, memory tools disabled", "error", err)
	} else {
		defer func() { _ = client.Close(ctx) }()
		if err := client.InitSchema(ctx); err != nil {
			logger.Error("failed to initialize memory schema", "error", err)
			os.Exit(1)
		}
		embedder, err := embedding.NewOllamaClient(cfg.EmbeddingModel, 0)
		if err != nil {
			logger.Error("failed to create embedder", "error", err)
			os.Exit(1)
		}
		store = memory.NewStore(client, embedder, collector, logger)
	}

	var model agent.Generator
	if m, err := llm.NewModel(cfg); err != nil {
		logger.Warn("language model unavailable, reports will not be narrated", "error", err)
	} else {
		model = m
	}

	manifest, err := agent.LoadManifest(cfg.AgentManifest)
	if err != nil {
		logger.Error("failed to load agent manifest", "error", err)
		os.Exit(1)
	}

	var recall agent.Recaller
	if store != nil {
		recall = store
	}
	assistant := agent.New(manifest, model, recall, dispatcher, notifier, collector, logger)

	srv := mcpserver.New(version, logger)
	srv.Setup()
	tools.RegisterAll(srv.MCPServer(), &tools.Dependencies{
		Dispatcher: dispatcher,
		Assistant:  assistant,
		Memory:     store,
		Logger:     logger,
	})

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("mcp server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("geofile-mcp stopped")
}
