// Package notify provides the progress-notification capability used by the
// ingestion pipeline and the agent tools. Sends are fire-and-forget: a failed
// or absent client never fails the operation that produced the message.
package notify

import (
	"context"
	"log/slog"
)

// Notifier pushes milestone texts to whoever is listening.
type Notifier interface {
	Send(ctx context.Context, text string)
}

// Nop discards all messages. Used by the CLI and in tests.
type Nop struct{}

// Send implements Notifier.
func (Nop) Send(context.Context, string) {}

// Logger mirrors every message into a slog.Logger. Useful when no
// WebSocket client is connected but milestones should still be visible.
type Logger struct {
	Log *slog.Logger
}

// Send implements Notifier.
func (l Logger) Send(_ context.Context, text string) {
	l.Log.Info("notify", "message", text)
}

// Multi fans a message out to several notifiers.
type Multi []Notifier

// Send implements Notifier.
func (m Multi) Send(ctx context.Context, text string) {
	for _, n := range m {
		n.Send(ctx, text)
	}
}
