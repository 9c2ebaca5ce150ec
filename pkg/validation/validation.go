// Package validation rejects malformed scenarios before any agent spawns.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-flightcore/pkg/config"
	"github.com/opd-ai/go-flightcore/pkg/tracking"
)

// Limits on identifiers
const (
	MaxAgentNameLen = 32
)

// Validation errors. Every problem found is wrapped around one of these.
var (
	ErrInvalidName       = errors.New("invalid agent name")
	ErrDuplicateAgent    = errors.New("duplicate agent name")
	ErrUnknownAgent      = errors.New("unknown agent reference")
	ErrSelfReference     = errors.New("agent references itself")
	ErrConflictingTarget = errors.New("conflicting target")
	ErrInvalidWaypoint   = errors.New("invalid waypoint")
	ErrInvalidDrag       = errors.New("invalid drag")
	ErrNonFinite         = errors.New("non-finite value")
	ErrInvalidThrust     = errors.New("invalid thrust")
	ErrInvalidFacing     = errors.New("invalid facing mode")
	ErrCameraConflict    = errors.New("camera claimed by more than one agent")
	ErrInvalidSimulation = errors.New("invalid simulation settings")
	ErrInvalidTelemetry  = errors.New("invalid telemetry settings")
)

// Regular expressions for input validation
var (
	// Allow alphanumeric, spaces, hyphens, underscores, and basic punctuation for agent names
	validAgentNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.<>()]+$`)
)

// Report collects non-fatal findings.
type Report struct {
	Warnings []string
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ValidateAgentName checks an agent name and returns it trimmed.
func ValidateAgentName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if len(name) > MaxAgentNameLen {
		return "", fmt.Errorf("%w: too long: %d characters (max %d)", ErrInvalidName, len(name), MaxAgentNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrInvalidName)
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: name cannot be only whitespace", ErrInvalidName)
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: contains control characters", ErrInvalidName)
		}
	}

	if !validAgentNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("%w: %q contains invalid characters", ErrInvalidName, trimmed)
	}

	return trimmed, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finite3(v [3]float64) bool { return finite(v[0], v[1], v[2]) }

// ValidateConfig checks a whole scenario. All hard errors are joined into
// the returned error; problems the simulation tolerates go in the Report.
func ValidateConfig(cfg *config.Config) (Report, error) {
	var (
		report Report
		errs   []error
	)
	if cfg == nil {
		return report, fmt.Errorf("%w: nil config", ErrInvalidSimulation)
	}

	dt := cfg.Simulation.TimeStep
	if !finite(dt) || dt <= 0 {
		errs = append(errs, fmt.Errorf("%w: timestep %v must be positive", ErrInvalidSimulation, dt))
	}
	if cfg.Simulation.MaxStepsPerFrame < 0 {
		errs = append(errs, fmt.Errorf("%w: maxStepsPerFrame %d is negative", ErrInvalidSimulation, cfg.Simulation.MaxStepsPerFrame))
	}
	if g := cfg.Guidance; !finite(g.Damping) || g.Damping < 0 {
		errs = append(errs, fmt.Errorf("%w: guidance damping %v", ErrInvalidSimulation, g.Damping))
	}
	if r := cfg.Guidance.ArrivalRadius; !finite(r) || r <= 0 {
		errs = append(errs, fmt.Errorf("%w: arrival radius %v must be positive", ErrInvalidSimulation, r))
	}
	errs = append(errs, validateTelemetry(cfg.Telemetry)...)

	names := make(map[string]int, len(cfg.Agents))
	for i, a := range cfg.Agents {
		name, err := ValidateAgentName(a.Name)
		if err != nil {
			errs = append(errs, fmt.Errorf("agent %d: %w", i, err))
			continue
		}
		if _, dup := names[name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateAgent, name))
			continue
		}
		names[name] = i
	}

	cameras := make(map[string]string)
	for i, a := range cfg.Agents {
		label := strings.TrimSpace(a.Name)
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		errs = append(errs, validateAgent(label, a, names, dt, &report)...)

		if a.Camera != "" {
			if owner, taken := cameras[a.Camera]; taken {
				errs = append(errs, fmt.Errorf("%w: %q by %q and %q", ErrCameraConflict, a.Camera, owner, label))
			} else {
				cameras[a.Camera] = label
			}
		}
	}

	return report, errors.Join(errs...)
}

func validateAgent(name string, a config.AgentConfig, names map[string]int, dt float64, report *Report) []error {
	var errs []error
	wrap := func(err error, format string, args ...any) {
		errs = append(errs, fmt.Errorf("agent %q: %w: %s", name, err, fmt.Sprintf(format, args...)))
	}

	if !finite3(a.Position) || !finite3(a.Rotation) || !finite3(a.Velocity) || !finite3(a.AngularVelocity) ||
		!finite3(a.Impulse) || !finite3(a.AngularImpulse) {
		wrap(ErrNonFinite, "spawn state")
	}

	switch {
	case !finite(a.Drag) || a.Drag < 0:
		wrap(ErrInvalidDrag, "%v must be finite and non-negative", a.Drag)
	case dt > 0 && a.Drag*dt > 1:
		report.warnf("agent %q: drag*timestep = %.3f exceeds 1 and will be clamped", name, a.Drag*dt)
	}

	if err := a.Thrust.Characteristics().Validate(); err != nil {
		wrap(ErrInvalidThrust, "%v", err)
	}

	if _, err := tracking.ParseFacing(a.Facing); err != nil {
		wrap(ErrInvalidFacing, "%v", err)
	}

	ref := func(what, other string) {
		other = strings.TrimSpace(other)
		if other == name {
			wrap(ErrSelfReference, "%s %q", what, other)
			return
		}
		if _, ok := names[other]; !ok {
			wrap(ErrUnknownAgent, "%s %q", what, other)
		}
	}

	if a.TargetPoint != nil && a.TargetAgent != "" {
		wrap(ErrConflictingTarget, "both targetPoint and targetAgent set")
	}
	if a.TargetPoint != nil && !finite3(*a.TargetPoint) {
		wrap(ErrNonFinite, "target point")
	}
	if a.TargetAgent != "" {
		ref("target", a.TargetAgent)
	}

	if len(a.Route) > 0 && (a.TargetPoint != nil || a.TargetAgent != "") {
		report.warnf("agent %q: route overrides the configured target", name)
	}
	for i, wp := range a.Route {
		switch {
		case wp.Point != nil && wp.Agent != "":
			wrap(ErrInvalidWaypoint, "waypoint %d sets both point and agent", i)
		case wp.Point == nil && wp.Agent == "":
			wrap(ErrInvalidWaypoint, "waypoint %d is empty", i)
		case wp.Point != nil && !finite3(*wp.Point):
			wrap(ErrInvalidWaypoint, "waypoint %d is not finite", i)
		case wp.Agent != "":
			ref(fmt.Sprintf("waypoint %d", i), wp.Agent)
		}
	}

	if a.Player && (a.Intercept || a.Facing != "") {
		report.warnf("agent %q: player-controlled, guidance settings ignored", name)
	}

	return errs
}

// telemetryBackends lists the names telemetry.Open accepts. An empty name
// selects the memory recorder.
var telemetryBackends = map[string]bool{
	"":         true,
	"memory":   true,
	"sqlite":   true,
	"postgres": true,
	"influx":   true,
}

func validateTelemetry(t config.TelemetryConfig) []error {
	if !t.Enabled {
		return nil
	}
	var errs []error
	if !telemetryBackends[t.Backend] {
		errs = append(errs, fmt.Errorf("%w: unknown backend %q", ErrInvalidTelemetry, t.Backend))
	}
	// An empty sqlite dsn opens an in-memory database.
	if t.Backend == "postgres" && t.DSN == "" {
		errs = append(errs, fmt.Errorf("%w: postgres backend needs a dsn", ErrInvalidTelemetry))
	}
	if t.Backend == "influx" && (t.Influx.URL == "" || t.Influx.Bucket == "") {
		errs = append(errs, fmt.Errorf("%w: influx backend needs url and bucket", ErrInvalidTelemetry))
	}
	if t.Interval == 0 {
		errs = append(errs, fmt.Errorf("%w: interval must be at least 1", ErrInvalidTelemetry))
	}
	return errs
}
