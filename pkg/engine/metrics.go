package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/opd-ai/go-flightcore/pkg/engine"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	ticks      metric.Int64Counter
	waypoints  metric.Int64Counter
	corruption metric.Int64Counter
	agents     metric.Int64ObservableGauge
}

// newMetrics registers the simulation instruments. Without a configured
// provider the global meter is a no-op.
func newMetrics(m metric.Meter, s *Simulation) (*metrics, error) {
	var (
		out metrics
		err error
	)

	out.ticks, err = m.Int64Counter(
		"flightcore.ticks",
		metric.WithDescription("Total simulation ticks stepped"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	out.waypoints, err = m.Int64Counter(
		"flightcore.waypoints.reached",
		metric.WithDescription("Total waypoints reached by route-following agents"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating waypoint counter: %w", err)
	}

	out.corruption, err = m.Int64Counter(
		"flightcore.agents.corrupted",
		metric.WithDescription("Agents whose state became non-finite"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating corruption counter: %w", err)
	}

	out.agents, err = m.Int64ObservableGauge(
		"flightcore.agents",
		metric.WithDescription("Current number of agents"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating agent gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			s.Lock.RLock()
			defer s.Lock.RUnlock()
			o.ObserveInt64(out.agents, int64(len(s.agents)))
			return nil
		},
		out.agents,
	)
	if err != nil {
		return nil, fmt.Errorf("registering agent callback: %w", err)
	}

	return &out, nil
}

func agentAttr(name string) metric.AddOption {
	return metric.WithAttributes(attribute.String("agent", name))
}
