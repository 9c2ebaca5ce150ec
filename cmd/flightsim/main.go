// cmd/flightsim/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-flightcore/pkg/config"
	"github.com/opd-ai/go-flightcore/pkg/engine"
	"github.com/opd-ai/go-flightcore/pkg/event"
	"github.com/opd-ai/go-flightcore/pkg/health"
	"github.com/opd-ai/go-flightcore/pkg/host"
	"github.com/opd-ai/go-flightcore/pkg/logging"
	"github.com/opd-ai/go-flightcore/pkg/telemetry"
)

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithRunID(context.Background(), logging.GenerateRunID())

	configPath := flag.String("config", "", "Path to scenario file (JSON, YAML or TOML)")
	createDefault := flag.Bool("default", false, "Write the default scenario to -config and exit")
	ticks := flag.Uint64("ticks", 0, "Ticks to run; overrides simulation.maxTicks when set")
	realTime := flag.Bool("realtime", false, "Pace ticks against the wall clock through the engo host")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		path := *configPath
		if path == "" {
			path = "scenario.json"
		}
		if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err, "config_path", path)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file", "config_path", path)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
		os.Exit(1)
	}
	if *ticks > 0 {
		cfg.Simulation.MaxTicks = *ticks
	}
	if *realTime {
		cfg.Simulation.RealTime = true
	}

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error(ctx, "Simulation failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *logging.Logger, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder, err := telemetry.Open(cfg.Telemetry, cfg.Simulation.TimeStep, logger)
	if err != nil {
		return logging.WrapError(err, "open telemetry backend %q", cfg.Telemetry.Backend)
	}
	opts := []engine.Option{engine.WithLogger(logger)}
	if recorder != nil {
		defer func() {
			if err := recorder.Close(); err != nil {
				logger.Error(ctx, "Telemetry close failed", err)
			}
		}()
		opts = append(opts, engine.WithRecorder(recorder, cfg.Telemetry.Interval))
	}

	sim, err := engine.NewSimulation(cfg, opts...)
	if err != nil {
		return err
	}

	sim.EventBus.Subscribe(event.WaypointReached, func(e event.Event) {
		wp := e.(*event.WaypointEvent)
		logger.Info(ctx, "Waypoint reached",
			"agent_id", wp.AgentID,
			"tick", wp.Tick,
			"reached", wp.Reached,
			"next", wp.Next,
		)
	})

	if cfg.Health.Addr != "" {
		srv := startHealthServer(ctx, logger, cfg.Health.Addr, sim, recorder)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error(ctx, "Health check server shutdown failed", err)
			}
		}()
	}

	logger.Info(ctx, "Starting simulation",
		"agents", len(cfg.Agents),
		"max_ticks", cfg.Simulation.MaxTicks,
		"real_time", cfg.Simulation.RealTime,
		"telemetry_backend", cfg.Telemetry.Backend,
		"telemetry_dsn", cfg.Telemetry.DSN,
	)

	if cfg.Simulation.RealTime {
		err = host.Run(ctx, sim, host.Options{
			Title:    "flightsim",
			MaxTicks: cfg.Simulation.MaxTicks,
			Cameras:  cameras(cfg),
		})
	} else {
		err = sim.Run(ctx, cfg.Simulation.MaxTicks)
	}
	if errors.Is(err, context.Canceled) {
		logger.Info(ctx, "Shutting down simulation", "tick", sim.Tick())
		err = nil
	}

	if recorder != nil {
		if ferr := recorder.Flush(context.Background()); ferr != nil {
			logger.Error(ctx, "Telemetry flush failed", ferr)
		}
	}
	if corrupted := sim.Corrupted(); len(corrupted) > 0 {
		return logging.WrapError(errors.New("non-finite agent state"), "integrity check on agents %v", corrupted)
	}
	return err
}

func cameras(cfg *config.Config) []string {
	var out []string
	for _, a := range cfg.Agents {
		if a.Camera != "" {
			out = append(out, a.Camera)
		}
	}
	return out
}

func startHealthServer(ctx context.Context, logger *logging.Logger, addr string, sim *engine.Simulation, recorder telemetry.Recorder) *http.Server {
	healthChecker := health.NewHealthChecker()
	healthChecker.AddCheck(health.NewSimulationHealthCheck(sim.IsRunning))
	healthChecker.AddCheck(health.NewIntegrityHealthCheck(sim.Corrupted))
	healthChecker.AddCheck(health.NewProgressHealthCheck(sim.Tick, sim.IsRunning))
	if recorder != nil {
		healthChecker.AddCheck(health.NewTelemetryHealthCheck(func(ctx context.Context) error {
			return telemetry.Ping(ctx, recorder)
		}))
	}
	// Heap limit: 500MB
	healthChecker.AddCheck(health.NewMemoryHealthCheck(500, health.HeapMB))

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", healthChecker.LivenessHandler)
	healthMux.HandleFunc("/ready", healthChecker.ReadinessHandler)

	srv := &http.Server{
		Addr:         addr,
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info(ctx, "Starting health check server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()
	return srv
}
