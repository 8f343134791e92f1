package geodata

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhiwei-liang/geofile-go/internal/metrics"
	"github.com/zhiwei-liang/geofile-go/internal/notify"
)

// Envelope is the uniform result wrapper of every public operation. An
// envelope's payload is never itself an envelope.
type Envelope struct {
	Status  string `json:"status"`
	Data    string `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// SuccessEnvelope wraps a successful report.
func SuccessEnvelope(data string) Envelope {
	return Envelope{Status: "success", Data: data}
}

// ErrorEnvelope wraps a terminal diagnostic.
func ErrorEnvelope(message, code string) Envelope {
	return Envelope{Status: "error", Message: message, Code: code}
}

// Dispatcher selects a processor by file extension, drives the pipeline,
// and funnels every failure through the remediation factory so no caller
// ever sees a bare error.
type Dispatcher struct {
	notifier   notify.Notifier
	logger     *slog.Logger
	metrics    *metrics.Collector
	tabular    *TabularProcessor
	vector     *VectorProcessor
	remediator *Remediator
}

// NewDispatcher wires the pipeline components around a shared notifier.
func NewDispatcher(notifier notify.Notifier, logger *slog.Logger, collector *metrics.Collector) *Dispatcher {
	vector := NewVectorProcessor(notifier, logger)
	return &Dispatcher{
		notifier: notifier,
		logger:   logger,
		metrics:  collector,
		tabular:  NewTabularProcessor(notifier, logger),
		vector:   vector,
		remediator: NewRemediator(notifier, logger, func(ctx context.Context, path string) (*Dataset, error) {
			return vector.Load(ctx, path)
		}),
	}
}

// Remediator exposes the remediation factory, mainly for tests.
func (d *Dispatcher) Remediator() *Remediator { return d.remediator }

// Process ingests one geodata file and returns the terminal envelope.
func (d *Dispatcher) Process(ctx context.Context, path string, opts Options) Envelope {
	start := time.Now()
	logger := d.logger.With("request_id", uuid.NewString(), "path", path)

	env := d.process(ctx, logger, path, opts)

	d.metrics.Observe(metrics.OpProcess, time.Since(start), env.Status != "success")
	logger.Info("request finished", "status", env.Status, "code", env.Code)
	return env
}

func (d *Dispatcher) process(ctx context.Context, logger *slog.Logger, path string, opts Options) Envelope {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return d.fail(ctx, logger, path, newFileNotFound(path, err))
		}
		return d.fail(ctx, logger, path, newPermissionFailure(path, err))
	}

	res, err := d.run(ctx, path, opts)
	if err == nil {
		d.notifier.Send(ctx, res.Report)
		return SuccessEnvelope(res.Report)
	}

	// Remediation: either a recovered dataset (resume at classification)
	// or a terminal diagnostic.
	remStart := time.Now()
	recovered, diag := d.remediator.Handle(ctx, path, err)
	d.metrics.Observe(metrics.OpRemediate, time.Since(remStart), diag != nil)

	if recovered != nil {
		res, err = d.vector.Analyze(ctx, recovered)
		if err == nil {
			d.notifier.Send(ctx, res.Report)
			return SuccessEnvelope(res.Report)
		}
		// The resumed pipeline failed; no second recovery attempt.
		_, diag = d.remediator.Handle(ctx, path, err)
	}

	return d.terminal(ctx, logger, err, diag)
}

// run picks the processor variant for the path's extension.
func (d *Dispatcher) run(ctx context.Context, path string, opts Options) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".shp":
		return d.vector.Process(ctx, path)
	default:
		if _, ok := tabularExtensions[ext]; !ok {
			return nil, newUnsupportedExtension(path, ext)
		}
		return d.tabular.Process(ctx, path, opts)
	}
}

// fail routes an early failure through remediation and wraps the result.
func (d *Dispatcher) fail(ctx context.Context, logger *slog.Logger, path string, failure *Failure) Envelope {
	_, diag := d.remediator.Handle(ctx, path, failure)
	return d.terminal(ctx, logger, failure, diag)
}

// terminal renders a diagnostic, pushes it, and wraps it as an error
// envelope with the failure kind's code.
func (d *Dispatcher) terminal(ctx context.Context, logger *slog.Logger, err error, diag *Diagnostic) Envelope {
	f := AsFailure(err)
	code := f.Kind.Code()
	if f.Kind == KindInvalidValue && f.Reason == ReasonCoordinatesUndetectable {
		code = "coordinates_undetectable"
	}

	// A handler that recovered leaves no diagnostic behind.
	if diag == nil {
		diag = diagnoseUnclassified(f)
	}
	text := diag.Render()
	d.notifier.Send(ctx, text)
	logger.Error("request failed", "code", code, "error", err)
	return ErrorEnvelope(text, code)
}
