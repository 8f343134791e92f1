// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/zhiwei-liang/geofile-go/internal/agent"
	"github.com/zhiwei-liang/geofile-go/internal/geodata"
	"github.com/zhiwei-liang/geofile-go/internal/memory"
)

// Dependencies holds shared services for tool handlers. Passed to handler
// factories via closure capture. Memory may be nil when no store is
// configured; the memory tools report that instead of panicking.
type Dependencies struct {
	Dispatcher *geodata.Dispatcher
	Assistant  *agent.Assistant
	Memory     *memory.Store
	Logger     *slog.Logger
}
