package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/opd-ai/go-flightcore/pkg/config"
	"github.com/opd-ai/go-flightcore/pkg/entity"
	"github.com/opd-ai/go-flightcore/pkg/event"
	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/route"
	"github.com/opd-ai/go-flightcore/pkg/tracking"
	"github.com/opd-ai/go-flightcore/pkg/validation"
)

// AgentState is a copy of one agent's state, safe to keep after the lock
// is released.
type AgentState struct {
	ID              uint64
	Name            string
	Pose            physics.Pose
	Velocity        physics.LocalVec
	AngularVelocity physics.LocalVec
	Target          physics.WorldVec
	HasTarget       bool
	Waypoint        int // -1 without a route
}

// Snapshot is a consistent copy of every agent at one tick.
type Snapshot struct {
	Tick   uint64
	Agents []AgentState
}

// Spawn validates an agent and registers it with every system it needs.
func (s *Simulation) Spawn(a *entity.Agent) error {
	s.Lock.Lock()
	err := s.register(a)
	s.Lock.Unlock()
	if err != nil {
		return err
	}

	s.Logger.ForAgent(a.ID(), a.Name).Info(context.Background(), "agent spawned")
	s.EventBus.Publish(event.NewAgentEvent(event.AgentSpawned, s, a.ID(), a.Name))
	return nil
}

// register must be called with the lock held.
func (s *Simulation) register(a *entity.Agent) error {
	if a == nil {
		return ErrNilAgent
	}
	name, err := validation.ValidateAgentName(a.Name)
	if err != nil {
		return err
	}
	a.Name = name
	if _, dup := s.agents[a.ID()]; dup {
		return fmt.Errorf("%w: id %d", ErrAlreadySpawned, a.ID())
	}
	if _, dup := s.names[name]; dup {
		return fmt.Errorf("%w: %q", validation.ErrDuplicateAgent, name)
	}
	if owner, taken := s.cameraSubject(a.Camera); taken {
		return fmt.Errorf("%w: %q already follows agent %d", validation.ErrCameraConflict, a.Camera, owner)
	}
	if err := a.Characteristics.Validate(); err != nil {
		return fmt.Errorf("%w: %v", validation.ErrInvalidThrust, err)
	}
	if !a.IsFinite() {
		return fmt.Errorf("%w: agent %q", validation.ErrNonFinite, name)
	}

	s.agents[a.ID()] = a
	s.names[name] = a.ID()
	s.order = append(s.order, a.ID())

	basic := &a.BasicEntity
	s.integrator.Add(basic, &a.Pose, &a.Kinematics)
	s.impulse.Add(basic, &a.Controls, &a.Characteristics, &a.Kinematics)
	s.resolver.Add(basic, &a.Tracker)
	s.telemetry.Add(basic, a.Name, &a.Pose, &a.Kinematics, &a.Characteristics, &a.Tracker)
	if a.Route != nil {
		route.Materialize(a.Route, &a.Tracker)
		s.routes.Add(basic, &a.Pose, a.Route, &a.Tracker)
	}
	if a.Player {
		s.player.Add(basic, &a.Controls)
	} else if a.Guided() {
		s.guidance.Add(basic, &a.Pose, &a.Kinematics, &a.Tracker, &a.Behavior, &a.Controls)
	}
	return nil
}

// Despawn removes an agent from the world. Trackers that followed it keep
// their last resolved Target. It reports whether the agent existed.
func (s *Simulation) Despawn(id uint64) bool {
	s.Lock.Lock()
	a, ok := s.agents[id]
	if ok {
		s.World.RemoveEntity(a.BasicEntity)
		delete(s.agents, id)
		delete(s.names, a.Name)
		delete(s.corrupted, id)
		for i, other := range s.order {
			if other == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.Lock.Unlock()
	if !ok {
		return false
	}

	s.Logger.ForAgent(id, a.Name).Info(context.Background(), "agent despawned")
	s.EventBus.Publish(event.NewAgentEvent(event.AgentDespawned, s, id, a.Name))
	return true
}

// Agent returns the agent with the given id. The pointer is live; read it
// only while no tick is running or under Lock.
func (s *Simulation) Agent(id uint64) (*entity.Agent, bool) {
	s.Lock.RLock()
	defer s.Lock.RUnlock()
	a, ok := s.agents[id]
	return a, ok
}

// AgentByName looks an agent up by its unique name.
func (s *Simulation) AgentByName(name string) (*entity.Agent, bool) {
	s.Lock.RLock()
	defer s.Lock.RUnlock()
	id, ok := s.names[strings.TrimSpace(name)]
	if !ok {
		return nil, false
	}
	return s.agents[id], true
}

// Agents returns every agent in spawn order.
func (s *Simulation) Agents() []*entity.Agent {
	s.Lock.RLock()
	defer s.Lock.RUnlock()
	out := make([]*entity.Agent, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.agents[id])
	}
	return out
}

// Snapshot copies the state of every agent.
func (s *Simulation) Snapshot() Snapshot {
	s.Lock.RLock()
	defer s.Lock.RUnlock()
	snap := Snapshot{
		Tick:   s.CurrentTick,
		Agents: make([]AgentState, 0, len(s.order)),
	}
	for _, id := range s.order {
		a := s.agents[id]
		st := AgentState{
			ID:              id,
			Name:            a.Name,
			Pose:            a.Pose,
			Velocity:        a.Kinematics.Velocity,
			AngularVelocity: a.Kinematics.AngularVelocity,
			Target:          a.Tracker.Target,
			HasTarget:       a.Tracker.HasTarget,
			Waypoint:        -1,
		}
		if a.Route != nil {
			st.Waypoint = a.Route.Index()
		}
		snap.Agents = append(snap.Agents, st)
	}
	return snap
}

// spawnAll creates the configured agents in two phases: every agent is
// built first, then name references are bound to ids, so an agent may
// follow one listed after it.
func (s *Simulation) spawnAll(cfgs []config.AgentConfig) error {
	built := make([]*entity.Agent, len(cfgs))
	ids := make(map[string]uint64, len(cfgs))
	for i, ac := range cfgs {
		a, err := newAgent(ac)
		if err != nil {
			return err
		}
		built[i] = a
		ids[a.Name] = a.ID()
	}

	for i, ac := range cfgs {
		if err := bindReferences(built[i], ac, ids); err != nil {
			return err
		}
	}

	s.Lock.Lock()
	for _, a := range built {
		if err := s.register(a); err != nil {
			s.Lock.Unlock()
			return fmt.Errorf("spawn %q: %w", a.Name, err)
		}
	}
	s.Lock.Unlock()

	for _, a := range built {
		s.EventBus.Publish(event.NewAgentEvent(event.AgentSpawned, s, a.ID(), a.Name))
	}
	return nil
}

// SpawnConfig spawns one configured agent at runtime. Its references are
// bound against the agents already in the world.
func (s *Simulation) SpawnConfig(ac config.AgentConfig) (*entity.Agent, error) {
	a, err := newAgent(ac)
	if err != nil {
		return nil, err
	}
	s.Lock.RLock()
	ids := make(map[string]uint64, len(s.names))
	for name, id := range s.names {
		ids[name] = id
	}
	s.Lock.RUnlock()

	if err := bindReferences(a, ac, ids); err != nil {
		return nil, err
	}
	if err := s.Spawn(a); err != nil {
		return nil, err
	}
	return a, nil
}

// newAgent builds the spawn state of a configured agent.
func newAgent(ac config.AgentConfig) (*entity.Agent, error) {
	name, err := validation.ValidateAgentName(ac.Name)
	if err != nil {
		return nil, err
	}
	facing, err := tracking.ParseFacing(ac.Facing)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w: %v", name, validation.ErrInvalidFacing, err)
	}

	a := entity.NewAgent(name, ac.Pose())
	a.Kinematics = ac.Kinematics()
	a.Controls = ac.Controls()
	a.Characteristics = ac.Thrust.Characteristics()
	a.Behavior = tracking.Behavior{Intercept: ac.Intercept, Facing: facing}
	a.Player = ac.Player
	a.Camera = ac.Camera
	if ac.TargetPoint != nil {
		a.Tracker.SetTarget(physics.WorldVec(*ac.TargetPoint))
	}
	return a, nil
}

// bindReferences resolves the target agent and route waypoints by name.
func bindReferences(a *entity.Agent, ac config.AgentConfig, ids map[string]uint64) error {
	lookup := func(what, name string) (uint64, error) {
		name = strings.TrimSpace(name)
		id, ok := ids[name]
		if !ok {
			return 0, fmt.Errorf("agent %q: %w: %s %q", a.Name, validation.ErrUnknownAgent, what, name)
		}
		if id == a.ID() {
			return 0, fmt.Errorf("agent %q: %w: %s", a.Name, validation.ErrSelfReference, what)
		}
		return id, nil
	}

	if ac.TargetAgent != "" {
		id, err := lookup("target", ac.TargetAgent)
		if err != nil {
			return err
		}
		a.Tracker.Track(id)
	}

	if len(ac.Route) == 0 {
		return nil
	}
	waypoints := make([]route.Waypoint, 0, len(ac.Route))
	for i, wp := range ac.Route {
		switch {
		case wp.Point != nil:
			waypoints = append(waypoints, route.PointWaypoint(physics.WorldVec(*wp.Point)))
		case wp.Agent != "":
			id, err := lookup(fmt.Sprintf("waypoint %d", i), wp.Agent)
			if err != nil {
				return err
			}
			waypoints = append(waypoints, route.EntityWaypoint(id))
		default:
			return fmt.Errorf("agent %q: %w: waypoint %d is empty", a.Name, validation.ErrInvalidWaypoint, i)
		}
	}
	r, err := route.NewRoute(waypoints...)
	if err != nil {
		return fmt.Errorf("agent %q: %w", a.Name, err)
	}
	a.Route = r
	return nil
}
