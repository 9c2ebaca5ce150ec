package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/opd-ai/go-flightcore/pkg/config"
	"github.com/opd-ai/go-flightcore/pkg/logging"
)

// Pinger is implemented by recorders backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Open builds the recorder named by the configuration. A disabled
// configuration yields a nil recorder and no error. Remote backends are
// wrapped in a circuit breaker that logs through logger.
func Open(cfg config.TelemetryConfig, timeStep float64, logger *logging.Logger) (Recorder, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryRecorder(), nil
	case "sqlite":
		db, err := OpenDatabase(cfg.Backend, cfg.DSN)
		if err != nil {
			return nil, err
		}
		rec, err := NewGormRecorder(db)
		if err != nil {
			return nil, err
		}
		return rec, nil
	case "postgres":
		db, err := OpenDatabase(cfg.Backend, cfg.DSN)
		if err != nil {
			return nil, err
		}
		rec, err := NewGormRecorder(db)
		if err != nil {
			return nil, err
		}
		return NewBreakerRecorder("telemetry-postgres", rec, DefaultBreakerSettings(), logger), nil
	case "influx":
		rec := NewInfluxRecorder(InfluxOptions{
			URL:      cfg.Influx.URL,
			Token:    cfg.Influx.Token,
			Org:      cfg.Influx.Org,
			Bucket:   cfg.Influx.Bucket,
			Epoch:    time.Now(),
			TimeStep: time.Duration(timeStep * float64(time.Second)),
		})
		return NewBreakerRecorder("telemetry-influx", rec, DefaultBreakerSettings(), logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Ping checks a recorder's backend when it has one.
func Ping(ctx context.Context, r Recorder) error {
	if p, ok := r.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
