package tracking

import (
	"github.com/EngoEngine/ecs"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/thrust"
)

// System priorities. Higher runs first within a tick.
const (
	ResolverPriority = 40
	GuidancePriority = 30
)

type trackerEntity struct {
	*ecs.BasicEntity
	tracker *Tracker
}

// ResolverSystem refreshes entity-derived targets every tick.
type ResolverSystem struct {
	Locator Locator

	entities []trackerEntity
}

// Add registers a tracker for resolution.
func (s *ResolverSystem) Add(basic *ecs.BasicEntity, tracker *Tracker) {
	s.entities = append(s.entities, trackerEntity{basic, tracker})
}

// Remove satisfies the ecs.System interface
func (s *ResolverSystem) Remove(basic ecs.BasicEntity) {
	for i, e := range s.entities {
		if e.ID() == basic.ID() {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			return
		}
	}
}

// Priority satisfies ecs.Prioritizer.
func (s *ResolverSystem) Priority() int { return ResolverPriority }

// Update satisfies the ecs.System interface
func (s *ResolverSystem) Update(dt float32) { s.Tick(float64(dt)) }

// Tick resolves every tracker that references an entity. Trackers whose
// entity is gone keep their last Target.
func (s *ResolverSystem) Tick(float64) {
	if s.Locator == nil {
		return
	}
	for _, e := range s.entities {
		Resolve(e.tracker, s.Locator)
	}
}

type guidedEntity struct {
	*ecs.BasicEntity
	pose       *physics.Pose
	kinematics *physics.Kinematics
	tracker    *Tracker
	behavior   *Behavior
	controls   *thrust.Controls
}

// GuidanceSystem writes Controls from each agent's Target and Behavior.
type GuidanceSystem struct {
	Config GuidanceConfig

	entities []guidedEntity
}

// Add registers an autonomous agent.
func (s *GuidanceSystem) Add(basic *ecs.BasicEntity, pose *physics.Pose, k *physics.Kinematics,
	tracker *Tracker, behavior *Behavior, controls *thrust.Controls) {
	s.entities = append(s.entities, guidedEntity{basic, pose, k, tracker, behavior, controls})
}

// Remove satisfies the ecs.System interface
func (s *GuidanceSystem) Remove(basic ecs.BasicEntity) {
	for i, e := range s.entities {
		if e.ID() == basic.ID() {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			return
		}
	}
}

// Priority satisfies ecs.Prioritizer.
func (s *GuidanceSystem) Priority() int { return GuidancePriority }

// Update satisfies the ecs.System interface
func (s *GuidanceSystem) Update(dt float32) { s.Tick(float64(dt)) }

// Tick runs the guidance laws for every registered agent.
func (s *GuidanceSystem) Tick(float64) {
	for _, e := range s.entities {
		Guide(e.pose, e.kinematics, e.tracker, *e.behavior, s.Config, e.controls)
	}
}

// Guide applies the engaged guidance laws of one agent. Laws that are not
// engaged leave their half of Controls untouched.
func Guide(pose *physics.Pose, k *physics.Kinematics, t *Tracker, b Behavior, cfg GuidanceConfig, c *thrust.Controls) {
	if b.Intercept {
		if t.HasTarget {
			c.Impulse = InterceptImpulse(*pose, k.Velocity, t.Target, cfg.Damping)
		} else {
			c.Impulse = physics.LocalVec{}
		}
	}

	var (
		desired mgl64.Quat
		ok      bool
	)
	switch b.Facing {
	case FaceNone:
		return
	case FaceTarget:
		if t.HasTarget {
			desired, ok = LookRotation(t.Target.Sub(pose.Position))
		}
	case FaceAcceleration:
		// Last tick's acceleration: this tick's is not converted yet.
		desired, ok = LookRotation(pose.ToWorld(k.Acceleration))
	}
	c.AngularImpulse = AngularImpulse(*pose, k.AngularVelocity, desired, ok)
}
