// Package telemetry collects hierarchical pass timings for an analysis run.
//
// A Collector and the currently open Timer travel in the context, so instrumented code only
// needs the ctx it already receives:
//
//	collector := telemetry.NewTimingCollector()
//	ctx = telemetry.WithCollector(ctx, collector)
//
//	ctx, timer := telemetry.StartTimer(ctx, "ledger.walk")
//	defer timer.End()
//
//	collector.Report(os.Stderr, styles)
//
// Without a collector every call is a no-op.
package telemetry

import (
	"context"
	"io"
	"time"

	"github.com/robinvdvleuten/beanledger/output"
)

type collectorKey struct{}

type timerKey struct{}

// Collector receives the root timers of a run.
type Collector interface {
	// Start begins timing a top-level operation.
	Start(name string) Timer

	// Report writes the timing tree to w. Styles may be nil for plain output.
	Report(w io.Writer, styles *output.Styles)

	// Spans returns the finished timings flattened in depth-first order.
	Spans() []Span
}

// Timer tracks a single operation. Nested operations are started with Child.
type Timer interface {
	End()
	Child(name string) Timer
}

// Span is one finished timing.
type Span struct {
	Name     string        `json:"name" yaml:"name"`
	Depth    int           `json:"depth" yaml:"depth"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// WithCollector attaches a collector to ctx.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, collector)
}

// FromContext returns the collector in ctx, or a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey{}).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// WithRootTimer makes timer the parent of every timer started from the returned context.
func WithRootTimer(ctx context.Context, timer Timer) context.Context {
	return context.WithValue(ctx, timerKey{}, timer)
}

// StartTimer starts a timer nested under the timer already in ctx, or a new root timer on the
// context's collector. The returned context carries the new timer.
func StartTimer(ctx context.Context, name string) (context.Context, Timer) {
	var timer Timer
	if parent, ok := ctx.Value(timerKey{}).(Timer); ok {
		timer = parent.Child(name)
	} else {
		timer = FromContext(ctx).Start(name)
	}
	return WithRootTimer(ctx, timer), timer
}
