// Package telemetry collects hierarchical timings for the phases of a
// formatting run. Collectors travel through context so instrumented code
// needs no extra parameters; when no collector is installed, FromContext
// hands back a no-op implementation with zero overhead.
package telemetry

import (
	"context"
	"io"

	"github.com/ledgertools/ledgerfmt/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector gathers timing data for one command invocation.
type Collector interface {
	// Start begins timing a phase. The returned Timer must be ended when
	// the phase completes.
	Start(name string) Timer

	// Report writes the collected timings to w. styles may be nil for
	// unstyled output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks one phase. Phases nest through Child.
type Timer interface {
	// End stops the timer and records the duration.
	End()

	// Child starts a phase nested under this one.
	Child(name string) Timer
}

// WithCollector installs a collector into the context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the context's collector, or a no-op collector when
// none was installed.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noopCollector{}
}

// noopCollector discards all timings.
type noopCollector struct{}

func (noopCollector) Start(name string) Timer { return noopTimer{} }

func (noopCollector) Report(w io.Writer, styles *output.Styles) {}

type noopTimer struct{}

func (noopTimer) End() {}

func (noopTimer) Child(name string) Timer { return noopTimer{} }
