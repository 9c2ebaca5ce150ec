package engine

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/opd-ai/go-flightcore/pkg/control"
	"github.com/opd-ai/go-flightcore/pkg/logging"
	"github.com/opd-ai/go-flightcore/pkg/telemetry"
)

// Option customizes a Simulation.
type Option func(*Simulation)

// WithLogger replaces the default JSON logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Simulation) { s.Logger = l }
}

// WithIntentSource feeds player-controlled agents.
func WithIntentSource(src control.IntentSource) Option {
	return func(s *Simulation) { s.player.Source = src }
}

// WithRecorder samples every agent into rec every interval ticks.
func WithRecorder(rec telemetry.Recorder, interval uint64) Option {
	return func(s *Simulation) {
		s.telemetry.Recorder = rec
		s.telemetry.Interval = interval
	}
}

// WithMeter records metrics through m instead of the global provider.
func WithMeter(m metric.Meter) Option {
	return func(s *Simulation) { s.meter = m }
}

// WithStopCondition ends Run as soon as cond reports done.
func WithStopCondition(cond StopCondition) Option {
	return func(s *Simulation) { s.StopCondition = cond }
}

// StopCondition decides when a run is over. Run checks it after every tick,
// outside the world lock.
type StopCondition interface {
	Done(s *Simulation) bool
}

// StopFunc adapts a function to StopCondition.
type StopFunc func(s *Simulation) bool

// Done calls f.
func (f StopFunc) Done(s *Simulation) bool { return f(s) }
