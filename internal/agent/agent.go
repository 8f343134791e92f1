package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zhiwei-liang/geofile-go/internal/geodata"
	"github.com/zhiwei-liang/geofile-go/internal/memory"
	"github.com/zhiwei-liang/geofile-go/internal/metrics"
	"github.com/zhiwei-liang/geofile-go/internal/notify"
)

// Generator is the LLM surface the assistant needs.
type Generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Stream(ctx context.Context, systemPrompt, userPrompt string, fn func(chunk string) error) (string, error)
}

// Recaller is the memory surface the assistant needs. May be absent.
type Recaller interface {
	Add(ctx context.Context, content, sourcePath string, metadata map[string]any) (string, error)
	Query(ctx context.Context, question, filterPath string) ([]memory.Match, error)
}

// Assistant answers chat questions and narrates geodata reports. The memory
// and model collaborators are optional; each degrades gracefully when nil.
type Assistant struct {
	manifest   *Manifest
	model      Generator
	recall     Recaller
	dispatcher *geodata.Dispatcher
	notifier   notify.Notifier
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// New creates an assistant.
func New(manifest *Manifest, model Generator, recall Recaller,
	dispatcher *geodata.Dispatcher, notifier notify.Notifier,
	collector *metrics.Collector, logger *slog.Logger) *Assistant {
	if manifest == nil {
		manifest = DefaultManifest()
	}
	return &Assistant{
		manifest:   manifest,
		model:      model,
		recall:     recall,
		dispatcher: dispatcher,
		notifier:   notifier,
		metrics:    collector,
		logger:     logger,
	}
}

// HandleChat answers a free-form question, grounding it in recalled memory
// when a store is configured.
func (a *Assistant) HandleChat(ctx context.Context, question string) (string, error) {
	start := time.Now()
	answer, err := a.chat(ctx, question, nil)
	a.metrics.Observe(metrics.OpChat, time.Since(start), err != nil)
	return answer, err
}

// StreamChat is HandleChat with token streaming through fn.
func (a *Assistant) StreamChat(ctx context.Context, question string, fn func(chunk string) error) (string, error) {
	start := time.Now()
	answer, err := a.chat(ctx, question, fn)
	a.metrics.Observe(metrics.OpChat, time.Since(start), err != nil)
	return answer, err
}

func (a *Assistant) chat(ctx context.Context, question string, fn func(chunk string) error) (string, error) {
	if a.model == nil {
		return "", fmt.Errorf("no language model configured")
	}

	profile, ok := a.manifest.Find(ProfileAssistant)
	if !ok {
		return "", fmt.Errorf("profile %s not found in manifest", ProfileAssistant)
	}

	prompt := question
	if recalled := a.recallContext(ctx, question); recalled != "" {
		prompt = fmt.Sprintf("Context from previously processed files:\n%s\n\nQuestion: %s", recalled, question)
	}

	var answer string
	var err error
	genStart := time.Now()
	if fn != nil {
		answer, err = a.model.Stream(ctx, profile.SystemPrompt, prompt, fn)
	} else {
		answer, err = a.model.GenerateWithSystem(ctx, profile.SystemPrompt, prompt)
	}
	a.metrics.Observe(metrics.OpLLMGenerate, time.Since(genStart), err != nil)
	if err != nil {
		return "", fmt.Errorf("chat generation: %w", err)
	}

	a.notifier.Send(ctx, answer)
	return answer, nil
}

// recallContext queries memory for the question and joins the hits. Memory
// failures degrade to an unassisted answer rather than failing the chat.
func (a *Assistant) recallContext(ctx context.Context, question string) string {
	if a.recall == nil {
		return ""
	}
	matches, err := a.recall.Query(ctx, question, "")
	if err != nil {
		a.logger.Warn("memory recall failed, answering without context", "error", err)
		return ""
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n---\n")
}

// HandleReadGeoFile runs the processing pipeline on path and, when a model is
// configured, replaces the raw report with a narrated summary. The report is
// stored in memory either way so later chats can recall it.
func (a *Assistant) HandleReadGeoFile(ctx context.Context, path string, opts geodata.Options) geodata.Envelope {
	env := a.dispatcher.Process(ctx, path, opts)
	if env.Status != "success" {
		return env
	}

	if a.recall != nil {
		if _, err := a.recall.Add(ctx, env.Data, path, map[string]any{"kind": "report"}); err != nil {
			a.logger.Warn("failed to store report in memory", "error", err, "path", path)
		}
	}

	if a.model == nil {
		return env
	}
	profile, ok := a.manifest.Find(ProfileReader)
	if !ok {
		return env
	}

	genStart := time.Now()
	narrated, err := a.model.GenerateWithSystem(ctx, profile.SystemPrompt, env.Data)
	a.metrics.Observe(metrics.OpLLMGenerate, time.Since(genStart), err != nil)
	if err != nil {
		// Narration is best effort; the raw report stands on its own.
		a.logger.Warn("report narration failed", "error", err, "path", path)
		return env
	}

	a.notifier.Send(ctx, narrated)
	return geodata.SuccessEnvelope(narrated)
}

// MapCommand is a structured instruction for a connected map frontend.
type MapCommand struct {
	Type      string `json:"type"`
	Operation string `json:"operation"`
	Data      string `json:"data"`
}

// DrawBoundary pushes a draw-boundary command for the named region to every
// connected frontend.
func (a *Assistant) DrawBoundary(ctx context.Context, region string) error {
	cmd := MapCommand{Type: "map", Operation: "draw_boundary", Data: region}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal map command: %w", err)
	}
	a.notifier.Send(ctx, string(payload))
	a.logger.Info("boundary draw requested", "region", region)
	return nil
}
