// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// FLIGHT_SIMULATION_TIMESTEP or FLIGHT_GUIDANCE_DAMPING.
const EnvPrefix = "FLIGHT"

// Config describes a complete simulation scenario
type Config struct {
	Simulation SimulationConfig `json:"simulation" mapstructure:"simulation"`
	Guidance   GuidanceConfig   `json:"guidance" mapstructure:"guidance"`
	Telemetry  TelemetryConfig  `json:"telemetry" mapstructure:"telemetry"`
	Health     HealthConfig     `json:"health" mapstructure:"health"`
	Agents     []AgentConfig    `json:"agents" mapstructure:"agents"`
}

// SimulationConfig contains tick-loop configuration
type SimulationConfig struct {
	// TimeStep is the fixed tick length in seconds.
	TimeStep float64 `json:"timeStep" mapstructure:"timeStep"`
	// MaxTicks stops the run after this many ticks. Zero runs until stopped.
	MaxTicks uint64 `json:"maxTicks" mapstructure:"maxTicks"`
	// RealTime paces ticks against the wall clock through the engo host.
	RealTime bool `json:"realTime" mapstructure:"realTime"`
	// MaxStepsPerFrame caps catch-up ticks after a long frame.
	MaxStepsPerFrame int `json:"maxStepsPerFrame" mapstructure:"maxStepsPerFrame"`
}

// GuidanceConfig contains guidance and route tuning
type GuidanceConfig struct {
	Damping       float64 `json:"damping" mapstructure:"damping"`
	ArrivalRadius float64 `json:"arrivalRadius" mapstructure:"arrivalRadius"`
	// IntentGain scales player intent into impulses.
	IntentGain float64 `json:"intentGain" mapstructure:"intentGain"`
}

// TelemetryConfig selects the flight recorder backend
type TelemetryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Backend is one of memory, sqlite, postgres or influx.
	Backend string `json:"backend" mapstructure:"backend"`
	// DSN is the sqlite file or postgres connection string.
	DSN string `json:"dsn" mapstructure:"dsn"`
	// Interval samples every N ticks.
	Interval uint64       `json:"interval" mapstructure:"interval"`
	Influx   InfluxConfig `json:"influx" mapstructure:"influx"`
}

// InfluxConfig contains InfluxDB connection settings
type InfluxConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Token  string `json:"token" mapstructure:"token"`
	Org    string `json:"org" mapstructure:"org"`
	Bucket string `json:"bucket" mapstructure:"bucket"`
}

// HealthConfig contains the health endpoint settings
type HealthConfig struct {
	// Addr is the listen address; empty disables the server.
	Addr string `json:"addr" mapstructure:"addr"`
}

// ThrustConfig contains per-axis acceleration bounds in the body frame
type ThrustConfig struct {
	Min [3]float64 `json:"min" mapstructure:"min"`
	Max [3]float64 `json:"max" mapstructure:"max"`
	Rot [3]float64 `json:"rot" mapstructure:"rot"`
}

// WaypointConfig is a route stop: exactly one of Point or Agent is set
type WaypointConfig struct {
	Point *[3]float64 `json:"point,omitempty" mapstructure:"point"`
	Agent string      `json:"agent,omitempty" mapstructure:"agent"`
}

// AgentConfig contains the spawn state of one agent
type AgentConfig struct {
	Name string `json:"name" mapstructure:"name"`

	Position [3]float64 `json:"position" mapstructure:"position"`
	// Rotation is XYZ Euler angles in radians.
	Rotation        [3]float64    `json:"rotation" mapstructure:"rotation"`
	Velocity        [3]float64    `json:"velocity" mapstructure:"velocity"`
	AngularVelocity [3]float64    `json:"angularVelocity" mapstructure:"angularVelocity"`
	Drag            float64       `json:"drag" mapstructure:"drag"`
	Thrust          *ThrustConfig `json:"thrust,omitempty" mapstructure:"thrust"`

	// Impulse and AngularImpulse are the initial controls. They persist for
	// agents no guidance law or player drives.
	Impulse        [3]float64 `json:"impulse" mapstructure:"impulse"`
	AngularImpulse [3]float64 `json:"angularImpulse" mapstructure:"angularImpulse"`

	TargetPoint *[3]float64      `json:"targetPoint,omitempty" mapstructure:"targetPoint"`
	TargetAgent string           `json:"targetAgent,omitempty" mapstructure:"targetAgent"`
	Route       []WaypointConfig `json:"route,omitempty" mapstructure:"route"`

	Intercept bool   `json:"intercept" mapstructure:"intercept"`
	Facing    string `json:"facing,omitempty" mapstructure:"facing"`
	Player    bool   `json:"player" mapstructure:"player"`
	Camera    string `json:"camera,omitempty" mapstructure:"camera"`
}

// setDefaults registers every scalar key so environment overrides apply
// even when the file omits the key.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("simulation.timeStep", d.Simulation.TimeStep)
	v.SetDefault("simulation.maxTicks", d.Simulation.MaxTicks)
	v.SetDefault("simulation.realTime", d.Simulation.RealTime)
	v.SetDefault("simulation.maxStepsPerFrame", d.Simulation.MaxStepsPerFrame)

	v.SetDefault("guidance.damping", d.Guidance.Damping)
	v.SetDefault("guidance.arrivalRadius", d.Guidance.ArrivalRadius)
	v.SetDefault("guidance.intentGain", d.Guidance.IntentGain)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.backend", d.Telemetry.Backend)
	v.SetDefault("telemetry.dsn", d.Telemetry.DSN)
	v.SetDefault("telemetry.interval", d.Telemetry.Interval)
	v.SetDefault("telemetry.influx.url", d.Telemetry.Influx.URL)
	v.SetDefault("telemetry.influx.token", d.Telemetry.Influx.Token)
	v.SetDefault("telemetry.influx.org", d.Telemetry.Influx.Org)
	v.SetDefault("telemetry.influx.bucket", d.Telemetry.Influx.Bucket)

	v.SetDefault("health.addr", d.Health.Addr)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads a configuration from a JSON, YAML or TOML file, chosen by
// extension. Keys missing from the file take their defaults and FLIGHT_*
// environment variables override both. An empty path loads the default
// scenario with environment overrides applied.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if path == "" || !v.IsSet("agents") {
		config.Agents = DefaultConfig().Agents
	}

	return &config, nil
}

// SaveConfig saves a configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the demo scenario: a leader patrolling a square,
// an interceptor chasing it, and a tumbling buoy slowed by drag.
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TimeStep:         0.016,
			MaxTicks:         4000,
			RealTime:         false,
			MaxStepsPerFrame: 8,
		},
		Guidance: GuidanceConfig{
			Damping:       4,
			ArrivalRadius: math.Sqrt(20),
			IntentGain:    10,
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Backend:  "memory",
			Interval: 10,
			Influx: InfluxConfig{
				URL:    "http://localhost:8086",
				Org:    "flightcore",
				Bucket: "telemetry",
			},
		},
		Agents: []AgentConfig{
			{
				Name: "leader",
				Route: []WaypointConfig{
					{Point: &[3]float64{0, 0, -30}},
					{Point: &[3]float64{30, 0, -30}},
					{Point: &[3]float64{30, 0, 0}},
					{Point: &[3]float64{0, 0, 0}},
				},
				Intercept: true,
				Facing:    "target",
			},
			{
				Name:        "interceptor",
				Position:    [3]float64{-20, 5, 10},
				TargetAgent: "leader",
				Intercept:   true,
				Facing:      "acceleration",
				Camera:      "main",
			},
			{
				Name:            "buoy",
				Position:        [3]float64{15, 0, -15},
				AngularVelocity: [3]float64{0.2, 0.5, 0},
				Drag:            0.05,
			},
		},
	}
}
