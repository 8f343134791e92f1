package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zhiwei-liang/geofile-go/internal/agent"
	"github.com/zhiwei-liang/geofile-go/internal/geodata"
	"github.com/zhiwei-liang/geofile-go/internal/llm"
	"github.com/zhiwei-liang/geofile-go/internal/memory"
	"github.com/zhiwei-liang/geofile-go/internal/notify"
	"github.com/zhiwei-liang/geofile-go/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket service",
	Long: `Run the HTTP service: chat, streaming chat, geodata processing and
memory routes, plus a WebSocket push channel at /ws. Pipeline progress and
reports are broadcast to every connected WebSocket client.

The memory store and language model are optional; routes depending on an
unavailable collaborator answer with an error envelope.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := notify.NewHub(logger)
	notifier := notify.Multi{hub, notify.Logger{Log: logger}}

	dispatcher := geodata.NewDispatcher(notifier, logger, collector)

	var store *memory.Store
	if s, client, err := openStore(ctx); err != nil {
		logger.Warn("memory store unavailable, continuing without it", "error", err)
	} else {
		store = s
		defer func() { _ = client.Close(ctx) }()
	}

	var model agent.Generator
	if m, err := llm.NewModel(cfg); err != nil {
		logger.Warn("language model unavailable, chat routes will fail", "error", err)
	} else {
		model = m
	}

	manifest, err := agent.LoadManifest(cfg.AgentManifest)
	if err != nil {
		return err
	}

	var recall agent.Recaller
	if store != nil {
		recall = store
	}
	assistant := agent.New(manifest, model, recall, dispatcher, notifier, collector, logger)

	srv := server.New(":"+cfg.ServerPort, dispatcher, assistant, store, hub, collector, logger)
	return srv.Run(ctx)
}
