package telemetry

import (
	"io"

	"github.com/robinvdvleuten/beanledger/output"
)

// noOpCollector is used when telemetry is disabled.
type noOpCollector struct{}

func (noOpCollector) Start(string) Timer                { return noOpTimer{} }
func (noOpCollector) Report(io.Writer, *output.Styles) {}
func (noOpCollector) Spans() []Span                     { return nil }

type noOpTimer struct{}

func (noOpTimer) End()               {}
func (noOpTimer) Child(string) Timer { return noOpTimer{} }
