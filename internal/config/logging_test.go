package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupLoggerWithWritersDualOutput(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("file processed", "path", "/tmp/a.csv")

	if !strings.Contains(stderr.String(), "file processed") {
		t.Errorf("stderr output missing message: %q", stderr.String())
	}

	// The file side is structured JSON.
	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v", err)
	}
	if entry["msg"] != "file processed" {
		t.Errorf("msg = %v, want %q", entry["msg"], "file processed")
	}
	if entry["path"] != "/tmp/a.csv" {
		t.Errorf("path = %v, want /tmp/a.csv", entry["path"])
	}
}

func TestSetupLoggerWithWritersLevelFilter(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)

	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(stderr.String(), "dropped") {
		t.Error("info record leaked through warn-level filter")
	}
	if !strings.Contains(stderr.String(), "kept") {
		t.Error("warn record missing")
	}
}
