package physics

import (
	"github.com/EngoEngine/ecs"
)

// IntegratorPriority places the integrator after every control system.
const IntegratorPriority = 10

type body struct {
	*ecs.BasicEntity
	pose       *Pose
	kinematics *Kinematics
}

// IntegratorSystem advances every registered body by one tick per Update.
type IntegratorSystem struct {
	bodies []body
}

// Add registers a body with the system.
func (s *IntegratorSystem) Add(basic *ecs.BasicEntity, pose *Pose, kinematics *Kinematics) {
	s.bodies = append(s.bodies, body{basic, pose, kinematics})
}

// Remove satisfies the ecs.System interface
func (s *IntegratorSystem) Remove(basic ecs.BasicEntity) {
	for i, b := range s.bodies {
		if b.ID() == basic.ID() {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			return
		}
	}
}

// Priority satisfies ecs.Prioritizer.
func (s *IntegratorSystem) Priority() int { return IntegratorPriority }

// Update steps every body by dt seconds.
func (s *IntegratorSystem) Update(dt float32) {
	s.Tick(float64(dt))
}

// Tick steps every body by dt seconds without the float32 round trip.
func (s *IntegratorSystem) Tick(dt float64) {
	for _, b := range s.bodies {
		Step(b.pose, b.kinematics, dt)
	}
}

// Len returns the number of registered bodies.
func (s *IntegratorSystem) Len() int { return len(s.bodies) }
