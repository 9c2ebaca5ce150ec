package config

import (
	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/thrust"
)

// Characteristics converts the thrust bounds. A nil config yields the
// defaults.
func (t *ThrustConfig) Characteristics() thrust.Characteristics {
	if t == nil {
		return thrust.DefaultCharacteristics()
	}
	return thrust.Characteristics{
		Min: physics.LocalVec(t.Min),
		Max: physics.LocalVec(t.Max),
		Rot: physics.LocalVec(t.Rot),
	}
}

// Pose returns the agent's spawn pose.
func (a AgentConfig) Pose() physics.Pose {
	return physics.NewPoseEuler(physics.WorldVec(a.Position), a.Rotation[0], a.Rotation[1], a.Rotation[2])
}

// Kinematics returns the agent's spawn motion state.
func (a AgentConfig) Kinematics() physics.Kinematics {
	return physics.Kinematics{
		Velocity:        physics.LocalVec(a.Velocity),
		AngularVelocity: physics.LocalVec(a.AngularVelocity),
		Drag:            a.Drag,
	}
}

// Controls returns the agent's initial impulses.
func (a AgentConfig) Controls() thrust.Controls {
	return thrust.Controls{
		Impulse:        physics.LocalVec(a.Impulse),
		AngularImpulse: physics.LocalVec(a.AngularImpulse),
	}
}
