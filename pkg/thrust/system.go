package thrust

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-flightcore/pkg/physics"
)

// ImpulsePriority runs the converter after guidance and before integration.
const ImpulsePriority = 20

type engine struct {
	*ecs.BasicEntity
	controls        *Controls
	characteristics *Characteristics
	kinematics      *physics.Kinematics
}

// ImpulseSystem turns every agent's Controls into accelerations each tick.
type ImpulseSystem struct {
	engines []engine
}

// Add registers an agent's thrust components.
func (s *ImpulseSystem) Add(basic *ecs.BasicEntity, controls *Controls, c *Characteristics, k *physics.Kinematics) {
	s.engines = append(s.engines, engine{basic, controls, c, k})
}

// Remove satisfies the ecs.System interface
func (s *ImpulseSystem) Remove(basic ecs.BasicEntity) {
	for i, e := range s.engines {
		if e.ID() == basic.ID() {
			s.engines = append(s.engines[:i], s.engines[i+1:]...)
			return
		}
	}
}

// Priority satisfies ecs.Prioritizer.
func (s *ImpulseSystem) Priority() int { return ImpulsePriority }

// Update satisfies the ecs.System interface
func (s *ImpulseSystem) Update(dt float32) { s.Tick(float64(dt)) }

// Tick converts impulses to accelerations. The converter is stateless, so
// dt is unused.
func (s *ImpulseSystem) Tick(float64) {
	for _, e := range s.engines {
		Apply(*e.controls, *e.characteristics, e.kinematics)
	}
}
