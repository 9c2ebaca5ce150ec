package route

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-flightcore/pkg/event"
	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/tracking"
)

// RoutePriority runs the sequencer first in every tick.
const RoutePriority = 50

type patroller struct {
	*ecs.BasicEntity
	pose    *physics.Pose
	route   *Route
	tracker *tracking.Tracker
}

// RouteSystem advances every registered agent along its route.
type RouteSystem struct {
	Config SequencerConfig
	// Bus receives a WaypointReached event per advance. May be nil.
	Bus *event.Bus
	// Clock reports the current simulation tick for events. May be nil.
	Clock func() uint64

	patrollers []patroller
}

// Add registers an agent with a route.
func (s *RouteSystem) Add(basic *ecs.BasicEntity, pose *physics.Pose, r *Route, t *tracking.Tracker) {
	s.patrollers = append(s.patrollers, patroller{basic, pose, r, t})
}

// Remove satisfies the ecs.System interface
func (s *RouteSystem) Remove(basic ecs.BasicEntity) {
	for i, p := range s.patrollers {
		if p.ID() == basic.ID() {
			s.patrollers = append(s.patrollers[:i], s.patrollers[i+1:]...)
			return
		}
	}
}

// Priority satisfies ecs.Prioritizer.
func (s *RouteSystem) Priority() int { return RoutePriority }

// Update satisfies the ecs.System interface
func (s *RouteSystem) Update(dt float32) { s.Tick(float64(dt)) }

// Tick sequences every route once.
func (s *RouteSystem) Tick(float64) {
	for _, p := range s.patrollers {
		reached := p.route.Index()
		if !Sequence(*p.pose, p.route, p.tracker, s.Config) {
			continue
		}
		if s.Bus != nil {
			var tick uint64
			if s.Clock != nil {
				tick = s.Clock()
			}
			s.Bus.Publish(event.NewWaypointEvent(s, p.ID(), tick, reached, p.route.Index()))
		}
	}
}
