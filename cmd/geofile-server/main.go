// Package main provides the entry point for the geofile HTTP server.
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
	"github.com/zhiwei-liang/geofile-go/internal/memory"
	"github.com/zhiwei-liang/geofile-go/internal/metrics"
	"github.com/zhiwei-liang/geofile-go/internal/notify"
	"github.com/zhiwei-liang/geofile-go/internal/server"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("geofile-server starting",
		"version", version,
		"port", cfg.ServerPort,
		"surrealdb_url", cfg.SurrealDBURL,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	hub := notify.NewHub(logger)
	notifier := notify.Multi{hub, notify.Logger{Log: logger}}
	dispatcher := geodata.NewDispatcher(notifier, logger, collector)

	// The memory store needs SurrealDB and Ollama; without them the server
	// still processes files, it just cannot remember or recall.
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
		logger.Warn("memory store unavailable, continuing without it", "error", err)
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
		logger.Info("memory store ready", "embedding_model", embedder.Model())
	}

	var model agent.Generator
	if m, err := llm.NewModel(cfg); err != nil {
		logger.Warn("language model unavailable, chat routes will fail", "error", err)
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

	srv := server.New(":"+cfg.ServerPort, dispatcher, assistant, store, hub, collector, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
