// Package engine owns the ECS world and steps every flight system in a
// fixed order at a fixed time step.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/EngoEngine/ecs"
	"go.opentelemetry.io/otel/metric"

	"github.com/opd-ai/go-flightcore/pkg/config"
	"github.com/opd-ai/go-flightcore/pkg/control"
	"github.com/opd-ai/go-flightcore/pkg/entity"
	"github.com/opd-ai/go-flightcore/pkg/event"
	"github.com/opd-ai/go-flightcore/pkg/logging"
	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/route"
	"github.com/opd-ai/go-flightcore/pkg/telemetry"
	"github.com/opd-ai/go-flightcore/pkg/thrust"
	"github.com/opd-ai/go-flightcore/pkg/tracking"
	"github.com/opd-ai/go-flightcore/pkg/validation"
)

// DefaultMaxStepsPerFrame caps Advance when the configuration leaves it
// unset.
const DefaultMaxStepsPerFrame = 8

var (
	// ErrNilAgent is returned when spawning a nil agent.
	ErrNilAgent = errors.New("nil agent")
	// ErrAlreadySpawned is returned when an agent id is already present.
	ErrAlreadySpawned = errors.New("agent already spawned")
)

// ticker is implemented by systems that step in float64 seconds.
type ticker interface {
	Tick(dt float64)
}

// Simulation represents the complete flight state and the systems that
// advance it
type Simulation struct {
	Config      *config.Config
	World       *ecs.World
	Lock        sync.RWMutex
	Running     bool
	TimeStep    float64 // Seconds per tick
	CurrentTick uint64
	EventBus    *event.Bus
	Logger      *logging.Logger

	StopCondition StopCondition // Optional early end for Run

	agents    map[uint64]*entity.Agent
	names     map[string]uint64
	order     []uint64
	corrupted map[uint64]bool

	player     *control.PlayerSystem
	routes     *route.RouteSystem
	resolver   *tracking.ResolverSystem
	guidance   *tracking.GuidanceSystem
	impulse    *thrust.ImpulseSystem
	integrator *physics.IntegratorSystem
	telemetry  *telemetry.TelemetrySystem

	// tickBus collects events raised by systems mid-tick; they are
	// delivered on EventBus once the world lock is released.
	tickBus *event.Bus
	pending []event.Event

	accumulator      float64
	maxStepsPerFrame int
	waypoints        uint64

	meter   metric.Meter
	metrics *metrics
}

// NewSimulation validates cfg and spawns its agents. A nil cfg uses
// config.DefaultConfig.
func NewSimulation(cfg *config.Config, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	report, err := validation.ValidateConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	s := &Simulation{
		Config:           cfg,
		World:            &ecs.World{},
		TimeStep:         cfg.Simulation.TimeStep,
		EventBus:         event.NewEventBus(),
		tickBus:          event.NewEventBus(),
		agents:           make(map[uint64]*entity.Agent),
		names:            make(map[string]uint64),
		corrupted:        make(map[uint64]bool),
		maxStepsPerFrame: cfg.Simulation.MaxStepsPerFrame,
	}
	if s.maxStepsPerFrame <= 0 {
		s.maxStepsPerFrame = DefaultMaxStepsPerFrame
	}
	s.initSystems()

	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = logging.NewLogger()
	}
	s.telemetry.Logger = s.Logger
	if s.meter == nil {
		s.meter = meter()
	}
	if s.metrics, err = newMetrics(s.meter, s); err != nil {
		return nil, err
	}

	ctx := context.Background()
	for _, w := range report.Warnings {
		s.Logger.Warn(ctx, "scenario warning", "warning", w)
	}

	if err := s.spawnAll(cfg.Agents); err != nil {
		return nil, err
	}
	s.Logger.Info(ctx, "simulation created",
		"agents", len(s.agents),
		"time_step", s.TimeStep,
	)
	return s, nil
}

// initSystems builds every system and adds it to the world. The world
// orders them by priority.
func (s *Simulation) initSystems() {
	clock := func() uint64 { return s.CurrentTick }
	cfg := s.Config

	s.player = &control.PlayerSystem{Gain: cfg.Guidance.IntentGain, Clock: clock}
	s.routes = &route.RouteSystem{
		Config: route.SequencerConfig{ArrivalRadius: cfg.Guidance.ArrivalRadius},
		Bus:    s.tickBus,
		Clock:  clock,
	}
	s.resolver = &tracking.ResolverSystem{Locator: unlockedLocator{s}}
	s.guidance = &tracking.GuidanceSystem{Config: tracking.GuidanceConfig{Damping: cfg.Guidance.Damping}}
	s.impulse = &thrust.ImpulseSystem{}
	s.integrator = &physics.IntegratorSystem{}
	s.telemetry = &telemetry.TelemetrySystem{Interval: cfg.Telemetry.Interval, Clock: clock}

	s.World.AddSystem(s.player)
	s.World.AddSystem(s.routes)
	s.World.AddSystem(s.resolver)
	s.World.AddSystem(s.guidance)
	s.World.AddSystem(s.impulse)
	s.World.AddSystem(s.integrator)
	s.World.AddSystem(s.telemetry)

	s.tickBus.Subscribe(event.WaypointReached, s.queue)
}

// queue holds an event until the tick completes. Called with the lock held.
func (s *Simulation) queue(e event.Event) {
	s.pending = append(s.pending, e)
	if wp, ok := e.(*event.WaypointEvent); ok {
		s.waypoints++
		if a, ok := s.agents[wp.AgentID]; ok {
			s.metrics.waypoints.Add(context.Background(), 1, agentAttr(a.Name))
		}
	}
}

// flush delivers queued events. Must be called without the lock.
func (s *Simulation) flush(events []event.Event) {
	for _, e := range events {
		s.EventBus.Publish(e)
	}
}

func (s *Simulation) drain() []event.Event {
	events := s.pending
	s.pending = nil
	return events
}

// Start marks the simulation as running
func (s *Simulation) Start() {
	s.Lock.Lock()
	if s.Running {
		s.Lock.Unlock()
		return
	}
	s.Running = true
	tick := s.CurrentTick
	s.Lock.Unlock()

	s.Logger.Info(context.Background(), "simulation started", "tick", tick)
	s.EventBus.Publish(event.NewSimulationEvent(event.SimulationStarted, s, tick))
}

// Stop marks the simulation as stopped
func (s *Simulation) Stop() {
	s.Lock.Lock()
	if !s.Running {
		s.Lock.Unlock()
		return
	}
	s.Running = false
	tick := s.CurrentTick
	s.Lock.Unlock()

	s.Logger.Info(context.Background(), "simulation stopped", "tick", tick, "waypoints", s.WaypointsReached())
	s.EventBus.Publish(event.NewSimulationEvent(event.SimulationStopped, s, tick))
}

// IsRunning reports whether Start has been called without a matching Stop.
func (s *Simulation) IsRunning() bool {
	s.Lock.RLock()
	defer s.Lock.RUnlock()
	return s.Running
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() uint64 {
	s.Lock.RLock()
	defer s.Lock.RUnlock()
	return s.CurrentTick
}

// WaypointsReached returns the total number of route advances.
func (s *Simulation) WaypointsReached() uint64 {
	s.Lock.RLock()
	defer s.Lock.RUnlock()
	return s.waypoints
}

// Step advances the world by exactly one fixed tick.
func (s *Simulation) Step() {
	s.Lock.Lock()
	s.step()
	events := s.drain()
	s.Lock.Unlock()

	s.flush(events)
}

// step runs every system once in priority order. Systems that step in
// float64 are ticked directly so the fixed step is not rounded to float32.
func (s *Simulation) step() {
	dt := s.TimeStep
	for _, sys := range s.World.Systems() {
		if t, ok := sys.(ticker); ok {
			t.Tick(dt)
			continue
		}
		sys.Update(float32(dt))
	}
	s.CurrentTick++
	s.metrics.ticks.Add(context.Background(), 1)
	s.checkIntegrity()
}

// Run steps until ticks have elapsed, the stop condition is met or ctx is
// cancelled. Zero ticks runs until one of the others.
func (s *Simulation) Run(ctx context.Context, ticks uint64) error {
	s.Start()
	defer s.Stop()

	for n := uint64(0); ticks == 0 || n < ticks; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Step()
		if s.StopCondition != nil && s.StopCondition.Done(s) {
			return nil
		}
	}
	return nil
}

// Advance feeds elapsed wall time into a fixed-step accumulator and steps
// as many whole ticks as it holds, at most MaxStepsPerFrame. Time beyond
// the cap is dropped. It returns the number of ticks stepped.
func (s *Simulation) Advance(elapsed float64) int {
	if !(elapsed > 0) {
		return 0
	}
	s.Lock.Lock()
	s.accumulator += elapsed
	steps := 0
	for s.accumulator >= s.TimeStep && steps < s.maxStepsPerFrame {
		s.step()
		s.accumulator -= s.TimeStep
		steps++
	}
	if s.accumulator >= s.TimeStep {
		dropped := s.accumulator
		s.accumulator = 0
		s.Logger.Debug(context.Background(), "frame too long, dropping time",
			"dropped_seconds", dropped,
			"steps", steps,
		)
	}
	events := s.drain()
	s.Lock.Unlock()

	s.flush(events)
	return steps
}

// checkIntegrity flags agents whose state turned non-finite. Each agent is
// reported once.
func (s *Simulation) checkIntegrity() {
	for _, id := range s.order {
		a := s.agents[id]
		if s.corrupted[id] || a.IsFinite() {
			continue
		}
		s.corrupted[id] = true
		s.metrics.corruption.Add(context.Background(), 1, agentAttr(a.Name))
		s.Logger.ForAgent(id, a.Name).Error(context.Background(), "agent state corrupted", nil, "tick", s.CurrentTick)
		s.pending = append(s.pending, event.NewCorruptionEvent(s, id, s.CurrentTick))
	}
}

// Corrupted returns the ids of agents whose state became non-finite, in
// ascending order.
func (s *Simulation) Corrupted() []uint64 {
	s.Lock.RLock()
	defer s.Lock.RUnlock()
	ids := make([]uint64, 0, len(s.corrupted))
	for id := range s.corrupted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Locate implements tracking.Locator for callers outside the tick.
func (s *Simulation) Locate(id uint64) (physics.Pose, physics.LocalVec, bool) {
	s.Lock.RLock()
	defer s.Lock.RUnlock()
	return s.locate(id)
}

// locate returns the live state of an agent. Corrupted agents cannot be
// located, so a NaN never spreads to the trackers following them.
func (s *Simulation) locate(id uint64) (physics.Pose, physics.LocalVec, bool) {
	a, ok := s.agents[id]
	if !ok || !a.IsFinite() {
		return physics.Pose{}, physics.LocalVec{}, false
	}
	return a.Pose, a.Kinematics.Velocity, true
}

// unlockedLocator serves the resolver, which runs with the lock held.
type unlockedLocator struct{ s *Simulation }

func (l unlockedLocator) Locate(id uint64) (physics.Pose, physics.LocalVec, bool) {
	return l.s.locate(id)
}

// CameraSubject returns the agent a camera rig follows.
func (s *Simulation) CameraSubject(camera string) (uint64, bool) {
	s.Lock.RLock()
	defer s.Lock.RUnlock()
	return s.cameraSubject(camera)
}

func (s *Simulation) cameraSubject(camera string) (uint64, bool) {
	if camera == "" {
		return 0, false
	}
	for _, id := range s.order {
		if s.agents[id].Camera == camera {
			return id, true
		}
	}
	return 0, false
}
