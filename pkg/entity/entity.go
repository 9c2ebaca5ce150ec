// pkg/entity/entity.go
package entity

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/route"
	"github.com/opd-ai/go-flightcore/pkg/thrust"
	"github.com/opd-ai/go-flightcore/pkg/tracking"
)

// Agent is a simulated ship or trackable object. It owns every component
// the flight systems read and write.
type Agent struct {
	ecs.BasicEntity

	Name string

	Pose            physics.Pose
	Kinematics      physics.Kinematics
	Controls        thrust.Controls
	Characteristics thrust.Characteristics
	Tracker         tracking.Tracker
	Behavior        tracking.Behavior

	// Route is optional. When set, the sequencer owns the Tracker's goal.
	Route *route.Route

	// Player marks an agent driven by intent input instead of guidance.
	Player bool
	// Camera names the camera rig following this agent, if any. At most
	// one agent may claim a given camera.
	Camera string
}

// NewAgent creates an agent at pose with default thrust characteristics.
func NewAgent(name string, pose physics.Pose) *Agent {
	return &Agent{
		BasicEntity:     ecs.NewBasic(),
		Name:            name,
		Pose:            pose,
		Characteristics: thrust.DefaultCharacteristics(),
	}
}

// Guided reports whether the guidance layer drives this agent.
func (a *Agent) Guided() bool {
	return !a.Player && a.Behavior.Active()
}

// IsFinite reports whether the agent's state is free of NaN/Inf. A
// non-finite orientation never recovers.
func (a *Agent) IsFinite() bool {
	return a.Pose.IsFinite() && a.Kinematics.IsFinite()
}
